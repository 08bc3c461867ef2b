package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/ai"
	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/ident"
	"github.com/voxdesk/voxdesk/internal/repo"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

// candidateMultiplier widens the ANN candidate pool relative to k.
const candidateMultiplier = 5

type RetrievalService struct {
	embedder Embedder
	searcher ChunkSearcher
	defaultK int
	cache    *expirable.LRU[string, []float32]
}

func NewRetrievalService(embedder Embedder, searcher ChunkSearcher, defaultK int) *RetrievalService {
	if defaultK <= 0 {
		defaultK = 5
	}
	cache := expirable.NewLRU[string, []float32](2048, nil, 10*time.Minute)
	return &RetrievalService{
		embedder: embedder,
		searcher: searcher,
		defaultK: defaultK,
		cache:    cache,
	}
}

type RetrieveOptions struct {
	K            int
	DepartmentID string
	TenantID     string
	// ExtraFilters are merged last and override the computed filters on key
	// collision.
	ExtraFilters map[string]interface{}
}

// Retrieve embeds the query, runs a filtered ANN search over the chunk index
// and reshapes the rows into an LLM-facing view plus a client-facing one.
// Retrieval is atomic: any failure aborts with no partial result.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (*model.RetrievalResult, error) {
	k := opts.K
	if k <= 0 {
		k = s.defaultK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", truncate(query, 50)), zap.Int("k", k))
	logger.Info("starting retrieval")

	vector, err := s.queryVector(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, err
	}

	filters := map[string]interface{}{
		"is_disabled": false,
	}
	if opts.DepartmentID != "" {
		if ident.IsValid(opts.DepartmentID) {
			filters["department_id"] = opts.DepartmentID
		} else {
			// Documented behavior: a malformed department id drops the filter,
			// retrieval proceeds unscoped by department.
			logger.Warn("invalid department id, skipping filter", zap.String("department_id", opts.DepartmentID))
		}
	}
	if opts.TenantID != "" {
		filters["tenant_id"] = opts.TenantID
	}
	for key, value := range opts.ExtraFilters {
		filters[key] = value
	}

	matches, err := s.searcher.Search(ctx, repo.SearchQuery{
		Vector:        vector,
		K:             k,
		NumCandidates: candidateMultiplier * k,
		Filters:       filters,
	})
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrSearch, err)
	}
	logger.Info("vector search done", zap.Int("matches", len(matches)))

	data := make([]model.ChunkContent, 0, len(matches))
	chunkMeta := make([]model.ChunkMetadata, 0, len(matches))
	for _, match := range matches {
		data = append(data, model.ChunkContent{
			Text:     match.Text,
			FileName: match.FileName,
			Score:    match.Score,
		})
		chunkMeta = append(chunkMeta, model.ChunkMetadata{
			ChunkID:      match.ChunkID,
			DocumentID:   match.DocumentID,
			DepartmentID: match.DepartmentID,
			TenantID:     match.TenantID,
			ChunkIndex:   match.ChunkIndex,
			Score:        match.Score,
			FileName:     match.FileName,
		})
	}

	return &model.RetrievalResult{
		Data: data,
		Metadata: model.RetrievalMetadata{
			Query:           query,
			K:               k,
			ChunksRetrieved: len(data),
			DepartmentID:    opts.DepartmentID,
			TenantID:        opts.TenantID,
			Chunks:          chunkMeta,
		},
	}, nil
}

func (s *RetrievalService) queryVector(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := s.cache.Get(query); ok {
		return cached, nil
	}
	vector, err := s.embedder.EmbedOne(ctx, query, ai.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	s.cache.Add(query, vector)
	return vector, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
