package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxdesk/voxdesk/internal/extract"
	"github.com/voxdesk/voxdesk/internal/filestore"
	"github.com/voxdesk/voxdesk/internal/model"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type fakeDocumentStore struct {
	mu       sync.Mutex
	created  []model.Document
	statuses map[string]string
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{statuses: map[string]string{}}
}

func (f *fakeDocumentStore) Create(ctx context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *doc)
	f.statuses[doc.ID] = doc.EmbeddingStatus
	return nil
}

func (f *fakeDocumentStore) ListByDepartment(ctx context.Context, departmentID string) ([]model.Document, error) {
	return f.created, nil
}

func (f *fakeDocumentStore) SetEmbeddingStatus(ctx context.Context, id, status, errDetail string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

type fakeChunkWriter struct {
	batches [][]model.Chunk
	err     error
}

func (f *fakeChunkWriter) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, chunks)
	return nil
}

type fakeFileStore struct {
	saved []string
}

func (f *fakeFileStore) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	f.saved = append(f.saved, key)
	return nil
}

func (f *fakeFileStore) Open(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

// lineChunker splits on newlines, one chunk per non-empty line.
type lineChunker struct{}

func (lineChunker) Chunk(text string) []string {
	var chunks []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			if i > start {
				chunks = append(chunks, text[start:i])
			}
			start = i + 1
		}
	}
	return chunks
}

func testDepartment() *model.Department {
	return &model.Department{
		ID:       "0123456789abcdef01234567",
		TenantID: "tenant-a",
		Name:     "support",
		IsActive: true,
	}
}

func newTestIngestService(docs *fakeDocumentStore, chunks *fakeChunkWriter, store *fakeFileStore) *IngestService {
	return NewIngestService(extract.NewExtractor(), lineChunker{}, &fakeEmbedder{}, docs, chunks, store)
}

func TestIngestBatchPartialFailure(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkWriter{}
	store := &fakeFileStore{}
	svc := newTestIngestService(docs, chunks, store)

	created := svc.IngestBatch(context.Background(), IngestInput{
		Department: testDepartment(),
		Files: []UploadFile{
			{FileName: "notes.txt", ContentType: "text/plain", Data: []byte("refund policy\nshipping info")},
			{FileName: "image.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
			{FileName: "faq.md", ContentType: "", Data: []byte("question one\nanswer one")},
		},
	})
	require.Len(t, created, 2)
	require.Equal(t, "notes.txt", created[0].FileName)
	require.Equal(t, "faq.md", created[1].FileName)
	for _, doc := range created {
		require.Equal(t, model.EmbeddingStatusCompleted, docs.statuses[doc.ID])
	}
	require.Len(t, chunks.batches, 2)
	require.Len(t, store.saved, 2)
}

func TestIngestBatchEmptyFileSkipped(t *testing.T) {
	docs := newFakeDocumentStore()
	svc := newTestIngestService(docs, &fakeChunkWriter{}, &fakeFileStore{})

	created := svc.IngestBatch(context.Background(), IngestInput{
		Department: testDepartment(),
		Files: []UploadFile{
			{FileName: "blank.txt", ContentType: "text/plain", Data: []byte("   \n  \n")},
		},
	})
	require.Empty(t, created)
	require.Empty(t, docs.created)
}

func TestIngestChunkRecordsShape(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkWriter{}
	svc := newTestIngestService(docs, chunks, &fakeFileStore{})

	created := svc.IngestBatch(context.Background(), IngestInput{
		Department: testDepartment(),
		Files: []UploadFile{
			{FileName: "notes.txt", ContentType: "text/plain", Data: []byte("line one\nline two\nline three")},
		},
		UploadedBy: "user-a",
	})
	require.Len(t, created, 1)
	doc := created[0]
	require.Equal(t, "user-a", doc.UploadedBy)
	require.Equal(t, "tenant-a", doc.TenantID)
	require.Contains(t, doc.StorageKey, "tenant-a/departments/"+doc.DepartmentID+"/")

	require.Len(t, chunks.batches, 1)
	records := chunks.batches[0]
	require.Len(t, records, 3)
	for i, record := range records {
		require.Equal(t, i, record.ChunkIndex)
		require.Equal(t, doc.ID, record.DocumentID)
		require.Equal(t, doc.DepartmentID, record.DepartmentID)
		require.Equal(t, "notes.txt", record.FileName)
		require.NotEmpty(t, record.ChunkID)
		require.NotEmpty(t, record.Embedding)
		require.False(t, record.IsDisabled)
	}
}

func TestIngestChunkInsertFailureMarksDocumentFailed(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkWriter{err: fmt.Errorf("index write failed")}
	svc := newTestIngestService(docs, chunks, &fakeFileStore{})

	created := svc.IngestBatch(context.Background(), IngestInput{
		Department: testDepartment(),
		Files: []UploadFile{
			{FileName: "notes.txt", ContentType: "text/plain", Data: []byte("line one\nline two")},
		},
	})
	require.Empty(t, created)
	require.Len(t, docs.created, 1)
	require.Equal(t, model.EmbeddingStatusFailed, docs.statuses[docs.created[0].ID])
}

func TestIngestOneErrorKinds(t *testing.T) {
	svc := newTestIngestService(newFakeDocumentStore(), &fakeChunkWriter{}, &fakeFileStore{})
	input := IngestInput{Department: testDepartment()}

	_, err := svc.ingestOne(context.Background(), input, UploadFile{
		FileName: "image.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'},
	})
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)

	_, err = svc.ingestOne(context.Background(), input, UploadFile{
		FileName: "blank.txt", ContentType: "text/plain", Data: []byte("   \n  \n"),
	})
	require.ErrorIs(t, err, appErr.ErrNoContent)
}

func TestIngestDefaultsForAnonymousUpload(t *testing.T) {
	docs := newFakeDocumentStore()
	svc := newTestIngestService(docs, &fakeChunkWriter{}, &fakeFileStore{})

	created := svc.IngestBatch(context.Background(), IngestInput{
		Department: testDepartment(),
		Files: []UploadFile{
			{Data: []byte("some content")},
		},
	})
	// No file name and no content type means the format check cannot pass.
	require.Empty(t, created)
}
