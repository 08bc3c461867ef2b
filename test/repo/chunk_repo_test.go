package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voxdesk/voxdesk/internal/model"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
	"github.com/voxdesk/voxdesk/internal/repo"
	"github.com/voxdesk/voxdesk/test/testutil"
)

const embeddingDims = 768

// unitVector builds a 768-dim vector pointing mostly along the given axis.
func unitVector(axis int) []float32 {
	vec := make([]float32, embeddingDims)
	vec[axis%embeddingDims] = 1
	return vec
}

func TestChunkRepoSearchFiltersAndOrder(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	depts := repo.NewDepartmentRepo(db)
	docs := repo.NewDocumentRepo(db)
	chunks := repo.NewChunkRepo(db)

	departmentID := createTestDepartment(t, depts)
	doc := newTestDocument(departmentID)
	require.NoError(t, docs.Create(context.Background(), doc))

	records := []model.Chunk{
		{
			ChunkID: uuid.NewString(), DocumentID: doc.ID, DepartmentID: departmentID,
			TenantID: "tenant-a", FileName: "notes.txt", ChunkIndex: 0,
			Text: "refunds are processed within 7 days", Embedding: unitVector(0),
		},
		{
			ChunkID: uuid.NewString(), DocumentID: doc.ID, DepartmentID: departmentID,
			TenantID: "tenant-a", FileName: "notes.txt", ChunkIndex: 1,
			Text: "shipping takes 3 business days", Embedding: unitVector(1),
		},
		{
			ChunkID: uuid.NewString(), DocumentID: doc.ID, DepartmentID: departmentID,
			TenantID: "tenant-a", FileName: "notes.txt", ChunkIndex: 2,
			Text: "disabled chunk", Embedding: unitVector(0), IsDisabled: true,
		},
	}
	require.NoError(t, chunks.CreateBatch(context.Background(), records))

	count, err := chunks.CountByDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	matches, err := chunks.Search(context.Background(), repo.SearchQuery{
		Vector:        unitVector(0),
		K:             5,
		NumCandidates: 25,
		Filters: map[string]interface{}{
			"department_id": departmentID,
			"tenant_id":     "tenant-a",
			"is_disabled":   false,
		},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "refunds are processed within 7 days", matches[0].Text)
	require.Equal(t, departmentID, matches[0].DepartmentID)
	for i := 1; i < len(matches); i++ {
		require.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}

	_, err = chunks.Search(context.Background(), repo.SearchQuery{
		Vector:  unitVector(0),
		K:       5,
		Filters: map[string]interface{}{"text": "injected"},
	})
	require.ErrorIs(t, err, appErr.ErrSearch)

	matches, err = chunks.Search(context.Background(), repo.SearchQuery{Vector: unitVector(0), K: 0})
	require.NoError(t, err)
	require.Empty(t, matches)
}
