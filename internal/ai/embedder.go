package ai

import (
	"context"
	"fmt"
	"strings"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

// Embedder maps text to fixed-dimensionality vectors through a configured
// provider. It does no retrying of its own.
type Embedder struct {
	provider IEmbedProvider
	model    string
}

func NewEmbedder(provider IEmbedProvider, model string) *Embedder {
	return &Embedder{provider: provider, model: model}
}

func (e *Embedder) ModelName() string {
	return e.model
}

// EmbedOne embeds a single text. Blank input is an error.
func (e *Embedder) EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrEmptyInput
	}
	vector, err := e.provider.Embed(ctx, e.model, text, taskType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbeddingBackend, err)
	}
	return vector, nil
}

// EmbedMany embeds a batch, dropping blank entries first. Vectors come back in
// the relative order of the surviving inputs. An all-blank or empty batch
// yields an empty result, not an error.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	valid := make([]string, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		valid = append(valid, text)
	}
	if len(valid) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := e.provider.EmbedBatch(ctx, e.model, valid, taskType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbeddingBackend, err)
	}
	return vectors, nil
}
