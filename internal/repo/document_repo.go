package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/dbutil"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var documentFields = []string{
	"id", "department_id", "tenant_id", "file_name", "content_type", "size",
	"storage_key", "uploaded_by", "description", "tags", "document_type",
	"embedding_status", "embedding_error", "is_disabled", "ctime", "mtime",
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":               doc.ID,
		"department_id":    doc.DepartmentID,
		"tenant_id":        doc.TenantID,
		"file_name":        doc.FileName,
		"content_type":     doc.ContentType,
		"size":             doc.Size,
		"storage_key":      doc.StorageKey,
		"uploaded_by":      doc.UploadedBy,
		"description":      doc.Description,
		"tags":             pq.Array(doc.Tags),
		"document_type":    doc.DocumentType,
		"embedding_status": doc.EmbeddingStatus,
		"embedding_error":  doc.EmbeddingError,
		"is_disabled":      doc.IsDisabled,
		"ctime":            doc.Ctime,
		"mtime":            doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*model.Document, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) ListByDepartment(ctx context.Context, departmentID string) ([]model.Document, error) {
	where := map[string]interface{}{
		"department_id": departmentID,
		"is_disabled":   false,
		"_orderby":      "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) SetEmbeddingStatus(ctx context.Context, id, status, errDetail string, mtime int64) error {
	const query = `
		UPDATE documents
		SET embedding_status = $1, embedding_error = $2, mtime = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, status, errDetail, mtime, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// MarkStaleProcessingFailed flips documents stuck in the processing state for
// longer than cutoff to failed. Returns the number of rows touched.
func (r *DocumentRepo) MarkStaleProcessingFailed(ctx context.Context, cutoff, now int64) (int64, error) {
	const query = `
		UPDATE documents
		SET embedding_status = $1, embedding_error = $2, mtime = $3
		WHERE embedding_status = $4 AND mtime < $5
	`
	res, err := r.db.ExecContext(ctx, query,
		model.EmbeddingStatusFailed, "embedding timed out", now,
		model.EmbeddingStatusProcessing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	var tags pq.StringArray
	err := row.Scan(
		&doc.ID, &doc.DepartmentID, &doc.TenantID, &doc.FileName, &doc.ContentType, &doc.Size,
		&doc.StorageKey, &doc.UploadedBy, &doc.Description, &tags, &doc.DocumentType,
		&doc.EmbeddingStatus, &doc.EmbeddingError, &doc.IsDisabled, &doc.Ctime, &doc.Mtime,
	)
	if err != nil {
		return nil, err
	}
	doc.Tags = tags
	return &doc, nil
}
