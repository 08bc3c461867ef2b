package service

import (
	"context"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/repo"
)

type Embedder interface {
	EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

type ChunkSearcher interface {
	Search(ctx context.Context, q repo.SearchQuery) ([]model.ChunkMatch, error)
}

type ChunkWriter interface {
	CreateBatch(ctx context.Context, chunks []model.Chunk) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	ListByDepartment(ctx context.Context, departmentID string) ([]model.Document, error)
	SetEmbeddingStatus(ctx context.Context, id, status, errDetail string, mtime int64) error
}

type DepartmentStore interface {
	Create(ctx context.Context, dept *model.Department) error
	Get(ctx context.Context, id string) (*model.Department, error)
	List(ctx context.Context, tenantID string) ([]model.Department, error)
}

type Chunker interface {
	Chunk(text string) []string
}
