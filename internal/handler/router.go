package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxdesk/voxdesk/internal/middleware"
)

type RouterDeps struct {
	Departments *DepartmentHandler
	Documents   *DocumentHandler
	Stream      *StreamHandler
	// UploadWindow rate-limits the endpoints that fan out into external
	// embedding and LLM calls. Zero disables the limiter.
	UploadWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/departments", deps.Departments.Create)
	api.GET("/departments", deps.Departments.List)
	api.GET("/departments/:id", deps.Departments.Get)

	limited := api.Group("")
	limited.Use(middleware.RateLimit(deps.UploadWindow))
	limited.POST("/departments/:id/documents", deps.Documents.Upload)
	limited.POST("/stream/connect", deps.Stream.Connect)

	api.GET("/departments/:id/documents", deps.Documents.List)
	api.GET("/stream/ws", deps.Stream.Serve)
}
