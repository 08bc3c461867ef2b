package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/ident"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type DepartmentService struct {
	departments DepartmentStore
}

func NewDepartmentService(departments DepartmentStore) *DepartmentService {
	return &DepartmentService{departments: departments}
}

type DepartmentCreateInput struct {
	Name               string
	Description        string
	Intent             []string
	DurationThreshold  *int
	SentimentThreshold *int
}

func (s *DepartmentService) Create(ctx context.Context, tenantID string, input DepartmentCreateInput) (*model.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	now := time.Now().UnixMilli()
	dept := &model.Department{
		ID:                 ident.New(),
		TenantID:           tenantID,
		Name:               name,
		Description:        input.Description,
		Intent:             input.Intent,
		DurationThreshold:  input.DurationThreshold,
		SentimentThreshold: input.SentimentThreshold,
		IsActive:           true,
		Ctime:              now,
		Mtime:              now,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("department created",
		zap.String("department_id", dept.ID), zap.String("name", dept.Name))
	return dept, nil
}

func (s *DepartmentService) Get(ctx context.Context, id string) (*model.Department, error) {
	if !ident.IsValid(id) {
		return nil, appErr.ErrInvalid
	}
	return s.departments.Get(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context, tenantID string) ([]model.Department, error) {
	return s.departments.List(ctx, tenantID)
}
