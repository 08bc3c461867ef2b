package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/ai"
	"github.com/voxdesk/voxdesk/internal/extract"
	"github.com/voxdesk/voxdesk/internal/filestore"
	"github.com/voxdesk/voxdesk/internal/model"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
	"github.com/voxdesk/voxdesk/internal/pkg/ident"
)

// IngestService runs the document ingestion flow: extract, chunk, embed,
// persist. Files within one batch are processed strictly sequentially.
type IngestService struct {
	extractor *extract.Extractor
	chunker   Chunker
	embedder  Embedder
	documents DocumentStore
	chunks    ChunkWriter
	store     filestore.Store
}

func NewIngestService(
	extractor *extract.Extractor,
	chunker Chunker,
	embedder Embedder,
	documents DocumentStore,
	chunks ChunkWriter,
	store filestore.Store,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		documents: documents,
		chunks:    chunks,
		store:     store,
	}
}

// UploadFile is one file from an upload batch, already read into memory.
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type IngestInput struct {
	Department  *model.Department
	Files       []UploadFile
	Description string
	UploadedBy  string
}

// IngestBatch processes each file in order. Per-file failures are logged and
// the file skipped; the batch never aborts. There is deliberately no rollback
// when a later step fails after an earlier one persisted state: the document
// record is marked failed and the gap is surfaced through logs only.
func (s *IngestService) IngestBatch(ctx context.Context, input IngestInput) []model.Document {
	created := make([]model.Document, 0, len(input.Files))
	for _, file := range input.Files {
		doc, err := s.ingestOne(ctx, input, file)
		if err != nil {
			logutil.GetLogger(ctx).Warn("file skipped",
				zap.String("file_name", file.FileName), zap.Error(err))
			continue
		}
		created = append(created, *doc)
	}
	return created
}

func (s *IngestService) ingestOne(ctx context.Context, input IngestInput, file UploadFile) (*model.Document, error) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("file_name", file.FileName),
		zap.String("department_id", input.Department.ID),
	)

	fileName := file.FileName
	if fileName == "" {
		fileName = "upload.bin"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	logger.Info("processing file", zap.Int("size", len(file.Data)))

	if !s.extractor.IsSupported(contentType, fileName) {
		return nil, fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, contentType)
	}

	tempPath, cleanup, err := writeTempFile(fileName, file.Data)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	defer cleanup()

	text, err := s.extractor.Extract(tempPath, contentType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text extracted", appErr.ErrNoContent)
	}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks created", appErr.ErrNoContent)
	}
	logger.Info("text chunked", zap.Int("chunks", len(chunks)))

	vectors, err := s.embedder.EmbedMany(ctx, chunks, ai.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	storageKey := fmt.Sprintf("%s/departments/%s/%s-%s",
		input.Department.TenantID, input.Department.ID, randomKeyPart(), fileName)
	if err := s.store.Save(ctx, storageKey, newByteReader(file.Data), int64(len(file.Data))); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	now := time.Now().UnixMilli()
	doc := &model.Document{
		ID:              ident.New(),
		DepartmentID:    input.Department.ID,
		TenantID:        input.Department.TenantID,
		FileName:        fileName,
		ContentType:     contentType,
		Size:            int64(len(file.Data)),
		StorageKey:      storageKey,
		UploadedBy:      input.UploadedBy,
		Description:     input.Description,
		DocumentType:    model.DocumentTypeKnowledge,
		EmbeddingStatus: model.EmbeddingStatusProcessing,
		Ctime:           now,
		Mtime:           now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	logger.Info("document inserted", zap.String("document_id", doc.ID))

	records := make([]model.Chunk, 0, len(chunks))
	for index, text := range chunks {
		records = append(records, model.Chunk{
			ChunkID:      uuid.NewString(),
			DocumentID:   doc.ID,
			DepartmentID: doc.DepartmentID,
			TenantID:     doc.TenantID,
			FileName:     fileName,
			ChunkIndex:   index,
			Text:         text,
			Embedding:    vectors[index],
		})
	}
	if err := s.chunks.CreateBatch(ctx, records); err != nil {
		logger.Error("chunk insert failed", zap.String("document_id", doc.ID), zap.Error(err))
		if markErr := s.documents.SetEmbeddingStatus(ctx, doc.ID, model.EmbeddingStatusFailed, err.Error(), time.Now().UnixMilli()); markErr != nil {
			logger.Error("failed to mark document failed", zap.Error(markErr))
		}
		return nil, fmt.Errorf("insert chunks: %w", err)
	}
	logger.Info("chunks inserted", zap.Int("count", len(records)))

	if err := s.documents.SetEmbeddingStatus(ctx, doc.ID, model.EmbeddingStatusCompleted, "", time.Now().UnixMilli()); err != nil {
		logger.Error("failed to mark document completed", zap.Error(err))
		return nil, fmt.Errorf("update document status: %w", err)
	}
	doc.EmbeddingStatus = model.EmbeddingStatusCompleted
	logger.Info("file processed", zap.String("document_id", doc.ID))
	return doc, nil
}

func writeTempFile(fileName string, data []byte) (string, func(), error) {
	ext := filepath.Ext(fileName)
	tmp, err := os.CreateTemp("", "voxdesk-upload-*"+ext)
	if err != nil {
		return "", nil, err
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(path)
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

func randomKeyPart() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type byteReader struct {
	*bytes.Reader
}

func (byteReader) Close() error { return nil }

func newByteReader(data []byte) filestore.ReadSeekCloser {
	return byteReader{bytes.NewReader(data)}
}
