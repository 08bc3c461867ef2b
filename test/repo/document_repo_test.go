package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxdesk/voxdesk/internal/model"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
	"github.com/voxdesk/voxdesk/internal/pkg/ident"
	"github.com/voxdesk/voxdesk/internal/repo"
	"github.com/voxdesk/voxdesk/test/testutil"
)

func createTestDepartment(t *testing.T, depts *repo.DepartmentRepo) string {
	t.Helper()
	now := time.Now().UnixMilli()
	dept := &model.Department{
		ID:       ident.New(),
		TenantID: "tenant-a",
		Name:     "dept-" + ident.New(),
		IsActive: true,
		Ctime:    now,
		Mtime:    now,
	}
	require.NoError(t, depts.Create(context.Background(), dept))
	return dept.ID
}

func newTestDocument(departmentID string) *model.Document {
	now := time.Now().UnixMilli()
	return &model.Document{
		ID:              ident.New(),
		DepartmentID:    departmentID,
		TenantID:        "tenant-a",
		FileName:        "notes.txt",
		ContentType:     "text/plain",
		Size:            42,
		StorageKey:      "tenant-a/departments/" + departmentID + "/notes.txt",
		UploadedBy:      "user-a",
		DocumentType:    model.DocumentTypeKnowledge,
		EmbeddingStatus: model.EmbeddingStatusProcessing,
		Ctime:           now,
		Mtime:           now,
	}
}

func TestDocumentRepoLifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	departmentID := createTestDepartment(t, repo.NewDepartmentRepo(db))
	doc := newTestDocument(departmentID)
	require.NoError(t, docs.Create(context.Background(), doc))

	fetched, err := docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, "notes.txt", fetched.FileName)
	require.Equal(t, model.EmbeddingStatusProcessing, fetched.EmbeddingStatus)

	require.NoError(t, docs.SetEmbeddingStatus(context.Background(), doc.ID, model.EmbeddingStatusCompleted, "", time.Now().UnixMilli()))
	fetched, err = docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.EmbeddingStatusCompleted, fetched.EmbeddingStatus)

	err = docs.SetEmbeddingStatus(context.Background(), ident.New(), model.EmbeddingStatusFailed, "boom", time.Now().UnixMilli())
	require.ErrorIs(t, err, appErr.ErrNotFound)

	listed, err := docs.ListByDepartment(context.Background(), departmentID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestDocumentRepoMarkStaleProcessingFailed(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	departmentID := createTestDepartment(t, repo.NewDepartmentRepo(db))

	stale := newTestDocument(departmentID)
	stale.Mtime = time.Now().Add(-2 * time.Hour).UnixMilli()
	require.NoError(t, docs.Create(context.Background(), stale))

	fresh := newTestDocument(departmentID)
	require.NoError(t, docs.Create(context.Background(), fresh))

	cutoff := time.Now().Add(-time.Hour).UnixMilli()
	touched, err := docs.MarkStaleProcessingFailed(context.Background(), cutoff, time.Now().UnixMilli())
	require.NoError(t, err)
	require.GreaterOrEqual(t, touched, int64(1))

	fetched, err := docs.Get(context.Background(), stale.ID)
	require.NoError(t, err)
	require.Equal(t, model.EmbeddingStatusFailed, fetched.EmbeddingStatus)

	fetched, err = docs.Get(context.Background(), fresh.ID)
	require.NoError(t, err)
	require.Equal(t, model.EmbeddingStatusProcessing, fetched.EmbeddingStatus)
}
