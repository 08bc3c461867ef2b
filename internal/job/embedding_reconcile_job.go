package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/repo"
)

// EmbeddingReconcileJob sweeps documents stuck in the processing state. A
// crash between the document insert and the final status update leaves the
// record processing forever; this job flips such records to failed so the
// upload can be retried.
type EmbeddingReconcileJob struct {
	documents  *repo.DocumentRepo
	staleAfter time.Duration
}

func NewEmbeddingReconcileJob(documents *repo.DocumentRepo, staleAfter time.Duration) *EmbeddingReconcileJob {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &EmbeddingReconcileJob{documents: documents, staleAfter: staleAfter}
}

func (j *EmbeddingReconcileJob) Name() string {
	return "embedding_reconcile"
}

func (j *EmbeddingReconcileJob) Run(ctx context.Context) error {
	now := time.Now()
	cutoff := now.Add(-j.staleAfter).UnixMilli()
	touched, err := j.documents.MarkStaleProcessingFailed(ctx, cutoff, now.UnixMilli())
	if err != nil {
		return err
	}
	if touched > 0 {
		logutil.GetLogger(ctx).Warn("stale processing documents failed", zap.Int64("count", touched))
	}
	return nil
}
