package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
	"github.com/voxdesk/voxdesk/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, "conflict", "conflict")
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
