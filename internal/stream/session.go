package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/service"
)

const (
	searchToolName = "search_knowledge_base"
	// maxToolRounds bounds the tool-call loop within a single user turn.
	maxToolRounds = 4
	retrievalK    = 5
)

// Retriever is the slice of the retrieval service a live session needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts service.RetrieveOptions) (*model.RetrievalResult, error)
}

// SessionConfig carries everything a single voice session needs to run.
type SessionConfig struct {
	DepartmentID string
	TenantID     string
	SessionID    string
	UserID       string
	IdleTimeout  time.Duration

	// STT may be nil, in which case the session is text only.
	STT       Transcriber
	LLM       *LLMClient
	Retriever Retriever
}

// Session drives one client websocket: audio in, transcripts and structured
// bot responses out, with knowledge-base lookups pushed as server messages.
type Session struct {
	conn *websocket.Conn
	cfg  SessionConfig

	writeMu  sync.Mutex
	turnMu   sync.Mutex
	messages []ChatMessage
	// pending accumulates final transcript segments until the speaker stops.
	pending []string
}

func NewSession(conn *websocket.Conn, cfg SessionConfig) *Session {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	return &Session{
		conn: conn,
		cfg:  cfg,
		messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
		},
	}
}

var searchTools = []Tool{
	{
		Type: "function",
		Function: ToolFunction{
			Name:        searchToolName,
			Description: "Search the knowledge base for relevant information",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
				},
				"required": []string{"query"},
			},
		},
	},
}

// Run blocks until the client disconnects, the idle timeout fires or ctx is
// cancelled.
func (s *Session) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(
		zap.String("session_id", s.cfg.SessionID),
		zap.String("department_id", s.cfg.DepartmentID),
	)
	logger.Info("session started")
	defer logger.Info("session closed")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.cfg.STT != nil {
		go s.transcriptLoop(ctx)
		defer s.cfg.STT.Close()
	}

	// Greet the caller before any client input arrives.
	s.turnMu.Lock()
	s.messages = append(s.messages, ChatMessage{Role: "system", Content: greetingPrompt})
	s.runModel(ctx)
	s.turnMu.Unlock()

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return err
		}
		var frame ClientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("client connection lost", zap.Error(err))
			}
			return nil
		}
		switch frame.Type {
		case FrameTypeClientReady:
			s.writeFrame(ServerFrame{Type: FrameTypeBotReady})
		case FrameTypeAudio:
			if s.cfg.STT == nil {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(frame.Data)
			if err != nil {
				s.writeFrame(ServerFrame{Type: FrameTypeError, Message: "malformed audio frame"})
				continue
			}
			if err := s.cfg.STT.SendAudio(audio); err != nil {
				logger.Error("failed to forward audio", zap.Error(err))
				return err
			}
		case FrameTypeText:
			text := strings.TrimSpace(frame.Text)
			if text == "" {
				continue
			}
			s.writeFrame(ServerFrame{Type: FrameTypeTranscript, Text: text, Final: true})
			s.handleUserTurn(ctx, text)
		default:
			s.writeFrame(ServerFrame{Type: FrameTypeError, Message: "unknown frame type: " + frame.Type})
		}
	}
}

func (s *Session) transcriptLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.cfg.STT.Results():
			if !ok {
				return
			}
			if ev.Text != "" {
				s.writeFrame(ServerFrame{Type: FrameTypeTranscript, Text: ev.Text, Final: ev.Final})
			}
			if ev.Final && ev.Text != "" {
				s.pending = append(s.pending, ev.Text)
			}
			if ev.SpeechFinal && len(s.pending) > 0 {
				utterance := strings.Join(s.pending, " ")
				s.pending = s.pending[:0]
				s.handleUserTurn(ctx, utterance)
			}
		}
	}
}

func (s *Session) handleUserTurn(ctx context.Context, text string) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	s.messages = append(s.messages, ChatMessage{Role: "user", Content: text})
	s.runModel(ctx)
}

// runModel runs the completion loop for the current context, resolving tool
// calls until the model produces a final answer. Caller holds turnMu.
func (s *Session) runModel(ctx context.Context) {
	logger := logutil.GetLogger(ctx)
	for round := 0; round < maxToolRounds; round++ {
		reply, err := s.cfg.LLM.Chat(ctx, s.messages, searchTools)
		if err != nil {
			logger.Error("llm completion failed", zap.Error(err))
			s.writeFrame(ServerFrame{Type: FrameTypeError, Message: "assistant is temporarily unavailable"})
			return
		}
		if len(reply.ToolCalls) == 0 {
			s.messages = append(s.messages, *reply)
			s.writeFrame(ServerFrame{Type: FrameTypeBotResponse, Data: responsePayload(reply.Content)})
			return
		}
		s.messages = append(s.messages, *reply)
		for _, call := range reply.ToolCalls {
			result := s.dispatchTool(ctx, call)
			s.messages = append(s.messages, ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
	logger.Warn("tool round limit reached")
	s.writeFrame(ServerFrame{Type: FrameTypeError, Message: "assistant could not complete the request"})
}

func (s *Session) dispatchTool(ctx context.Context, call ToolCall) string {
	if call.Function.Name != searchToolName {
		return `{"error": "unknown tool"}`
	}
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		return `{"results": []}`
	}
	return s.searchKnowledgeBase(ctx, args.Query)
}

// searchKnowledgeBase runs retrieval, pushes the full chunk set to the client
// and returns a slimmed-down view for the model. Retrieval failures degrade
// to an empty result so the conversation keeps going.
func (s *Session) searchKnowledgeBase(ctx context.Context, query string) string {
	logger := logutil.GetLogger(ctx)
	result, err := s.cfg.Retriever.Retrieve(ctx, query, service.RetrieveOptions{
		K:            retrievalK,
		DepartmentID: s.cfg.DepartmentID,
		TenantID:     s.cfg.TenantID,
	})
	if err != nil {
		logger.Error("knowledge base search failed", zap.Error(err), zap.String("query", query))
		return `{"results": []}`
	}

	chunks := make([]KnowledgeChunk, 0, len(result.Data))
	clean := make([]map[string]string, 0, len(result.Data))
	for i, content := range result.Data {
		meta := result.Metadata.Chunks[i]
		chunks = append(chunks, KnowledgeChunk{
			ID:       meta.ChunkID,
			Text:     content.Text,
			Metadata: meta,
		})
		clean = append(clean, map[string]string{
			"id":      meta.ChunkID,
			"content": content.Text,
		})
	}

	payload, err := json.Marshal(KnowledgeMessage{Type: searchToolName, Chunks: chunks})
	if err == nil {
		s.writeFrame(ServerFrame{Type: FrameTypeServerMessage, Data: payload})
	}

	toolResult, err := json.Marshal(map[string]interface{}{"results": clean})
	if err != nil {
		return `{"results": []}`
	}
	return string(toolResult)
}

// responsePayload passes model output through as JSON when possible, falling
// back to a quoted string for non-conforming replies.
func responsePayload(content string) json.RawMessage {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(trimmed)
	return quoted
}

func (s *Session) writeFrame(frame ServerFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.WriteJSON(frame)
}
