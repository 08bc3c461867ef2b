package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxdesk/voxdesk/internal/pkg/response"
	"github.com/voxdesk/voxdesk/internal/service"
)

type DepartmentHandler struct {
	departments *service.DepartmentService
	tenantID    string
}

func NewDepartmentHandler(departments *service.DepartmentService, tenantID string) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, tenantID: tenantID}
}

type createDepartmentRequest struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	Intent             []string `json:"intent"`
	DurationThreshold  *int     `json:"duration_threshold"`
	SentimentThreshold *int     `json:"sentiment_threshold"`
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req createDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "name is required")
		return
	}
	dept, err := h.departments.Create(c.Request.Context(), h.tenantID, service.DepartmentCreateInput{
		Name:               req.Name,
		Description:        req.Description,
		Intent:             req.Intent,
		DurationThreshold:  req.DurationThreshold,
		SentimentThreshold: req.SentimentThreshold,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dept)
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.departments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, dept)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.departments.List(c.Request.Context(), h.tenantID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"departments": depts,
		"count":       len(depts),
	})
}
