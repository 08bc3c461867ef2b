package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/config"
	"github.com/voxdesk/voxdesk/internal/pkg/jwt"
	"github.com/voxdesk/voxdesk/internal/pkg/response"
	"github.com/voxdesk/voxdesk/internal/service"
	"github.com/voxdesk/voxdesk/internal/stream"
)

// StreamHandler bootstraps live voice sessions: a connect call validates the
// department and mints a short-lived token, the websocket endpoint redeems it.
type StreamHandler struct {
	departments *service.DepartmentService
	retrieval   *service.RetrievalService
	streamCfg   config.StreamConfig
	sttCfg      config.STTConfig
	llmCfg      config.LLMConfig
	tenantCfg   config.TenantConfig
	upgrader    websocket.Upgrader
}

func NewStreamHandler(
	departments *service.DepartmentService,
	retrieval *service.RetrievalService,
	streamCfg config.StreamConfig,
	sttCfg config.STTConfig,
	llmCfg config.LLMConfig,
	tenantCfg config.TenantConfig,
) *StreamHandler {
	return &StreamHandler{
		departments: departments,
		retrieval:   retrieval,
		streamCfg:   streamCfg,
		sttCfg:      sttCfg,
		llmCfg:      llmCfg,
		tenantCfg:   tenantCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser origin policy is enforced by the CORS allowlist on the
			// bootstrap call; the upgrade itself is gated by the token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type connectRequest struct {
	DepartmentID string `json:"department_id" binding:"required"`
}

type connectResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	WSURL     string `json:"ws_url"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *StreamHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "department_id is required")
		return
	}
	dept, err := h.departments.Get(c.Request.Context(), req.DepartmentID)
	if err != nil {
		handleError(c, err)
		return
	}

	sessionID := uuid.NewString()
	ttl := time.Duration(h.streamCfg.TokenTTLSeconds) * time.Second
	token, err := jwt.GenerateSessionToken(jwt.SessionClaims{
		DepartmentID: dept.ID,
		TenantID:     h.tenantCfg.TenantID,
		SessionID:    sessionID,
		UserID:       h.tenantCfg.UserID,
	}, []byte(h.streamCfg.TokenSecret), ttl)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, connectResponse{
		SessionID: sessionID,
		Token:     token,
		WSURL:     "/api/v1/stream/ws?token=" + token,
		ExpiresIn: h.streamCfg.TokenTTLSeconds,
	})
}

func (h *StreamHandler) Serve(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "unauthorized", "token is required")
		return
	}
	claims, err := jwt.ParseSessionToken(token, []byte(h.streamCfg.TokenSecret))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
		return
	}

	ctx := c.Request.Context()
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", claims.SessionID))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var stt stream.Transcriber
	if h.sttCfg.APIKey != "" {
		stt, err = stream.DialDeepgram(ctx, h.sttCfg.APIKey, h.sttCfg.URL, h.sttCfg.Language)
		if err != nil {
			logger.Error("stt backend unreachable, continuing text only", zap.Error(err))
			stt = nil
		}
	}

	session := stream.NewSession(conn, stream.SessionConfig{
		DepartmentID: claims.DepartmentID,
		TenantID:     claims.TenantID,
		SessionID:    claims.SessionID,
		UserID:       claims.UserID,
		IdleTimeout:  time.Duration(h.streamCfg.IdleTimeoutSecs) * time.Second,
		STT:          stt,
		LLM:          stream.NewLLMClient(h.llmCfg.APIKey, h.llmCfg.BaseURL, h.llmCfg.Model),
		Retriever:    h.retrieval,
	})
	if err := session.Run(ctx); err != nil {
		logger.Warn("session ended with error", zap.Error(err))
	}
}
