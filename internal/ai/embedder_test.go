package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type fakeEmbedProvider struct {
	fail  bool
	calls int
}

func (f *fakeEmbedProvider) Name() string { return "fake" }

func (f *fakeEmbedProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	return []float32{float32(len(text))}, nil
}

func (f *fakeEmbedProvider) EmbedBatch(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, []float32{float32(len(text))})
	}
	return out, nil
}

func TestEmbedOneBlankInput(t *testing.T) {
	provider := &fakeEmbedProvider{}
	embedder := NewEmbedder(provider, "test-model")
	_, err := embedder.EmbedOne(context.Background(), "   ", TaskRetrievalQuery)
	require.ErrorIs(t, err, appErr.ErrEmptyInput)
	require.Zero(t, provider.calls)
}

func TestEmbedOneBackendFailure(t *testing.T) {
	embedder := NewEmbedder(&fakeEmbedProvider{fail: true}, "test-model")
	_, err := embedder.EmbedOne(context.Background(), "query", TaskRetrievalQuery)
	require.ErrorIs(t, err, appErr.ErrEmbeddingBackend)
}

func TestEmbedManyFiltersBlanksPreservesOrder(t *testing.T) {
	embedder := NewEmbedder(&fakeEmbedProvider{}, "test-model")
	vectors, err := embedder.EmbedMany(context.Background(), []string{"aa", "", "bbbb", "   ", "c"}, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, float32(2), vectors[0][0])
	require.Equal(t, float32(4), vectors[1][0])
	require.Equal(t, float32(1), vectors[2][0])
}

func TestEmbedManyEmptyInput(t *testing.T) {
	provider := &fakeEmbedProvider{}
	embedder := NewEmbedder(provider, "test-model")

	vectors, err := embedder.EmbedMany(context.Background(), nil, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Empty(t, vectors)

	vectors, err = embedder.EmbedMany(context.Background(), []string{"", "  "}, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Empty(t, vectors)
	require.Zero(t, provider.calls)
}
