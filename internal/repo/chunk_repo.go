package repo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/dbutil"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		rows = append(rows, map[string]interface{}{
			"chunk_id":      chunk.ChunkID,
			"document_id":   chunk.DocumentID,
			"department_id": chunk.DepartmentID,
			"tenant_id":     chunk.TenantID,
			"file_name":     chunk.FileName,
			"chunk_index":   chunk.ChunkIndex,
			"text":          chunk.Text,
			"embedding":     pgvector.NewVector(chunk.Embedding),
			"is_disabled":   chunk.IsDisabled,
		})
	}
	sqlStr, args, err := builder.BuildInsert("document_chunks", rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// SearchQuery describes one ANN lookup over the chunk index. Filters are
// equality predicates on filterable chunk columns.
type SearchQuery struct {
	Vector        []float32
	K             int
	NumCandidates int
	Filters       map[string]interface{}
}

// Filterable chunk columns. Filter keys outside this set are rejected rather
// than interpolated into SQL.
var filterableChunkColumns = map[string]bool{
	"department_id": true,
	"tenant_id":     true,
	"is_disabled":   true,
	"document_id":   true,
	"file_name":     true,
}

// Search runs an approximate-nearest-neighbor query ordered by cosine
// distance, returning the top K rows with score = 1 - distance.
func (r *ChunkRepo) Search(ctx context.Context, q SearchQuery) ([]model.ChunkMatch, error) {
	if q.K <= 0 {
		return []model.ChunkMatch{}, nil
	}
	candidates := q.NumCandidates
	if candidates < q.K {
		candidates = q.K
	}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		if !filterableChunkColumns[key] {
			return nil, fmt.Errorf("%w: non-filterable field %q", appErr.ErrSearch, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vec := pgvector.NewVector(q.Vector)
	args := []interface{}{vec}
	var conds []string
	for _, key := range keys {
		args = append(args, q.Filters[key])
		conds = append(conds, fmt.Sprintf("%s = $%d", key, len(args)))
	}
	whereClause := ""
	if len(conds) > 0 {
		whereClause = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, q.K)

	query := fmt.Sprintf(`
		SELECT chunk_id, document_id, department_id, tenant_id, file_name,
		       chunk_index, text, 1 - (embedding <=> $1) AS score
		FROM document_chunks
		%s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, whereClause, len(args))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// ef_search bounds the candidate set the index walks before ranking.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", candidates)); err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]model.ChunkMatch, 0, q.K)
	for rows.Next() {
		var m model.ChunkMatch
		if err := rows.Scan(
			&m.ChunkID, &m.DocumentID, &m.DepartmentID, &m.TenantID, &m.FileName,
			&m.ChunkIndex, &m.Text, &m.Score,
		); err != nil {
			return nil, err
		}
		m.DocumentID = strings.TrimSpace(m.DocumentID)
		m.DepartmentID = strings.TrimSpace(m.DepartmentID)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, tx.Commit()
}

func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
