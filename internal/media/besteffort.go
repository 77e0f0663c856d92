package media

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// BestEffort performs deletes whose failure must never reach the caller.
// Failures are logged and counted; Delete has no error result on purpose
// so callers cannot accidentally propagate one.
type BestEffort struct {
	store    Store
	logger   *zap.Logger
	failures atomic.Int64
}

// NewBestEffort wraps store
func NewBestEffort(store Store, logger *zap.Logger) *BestEffort {
	return &BestEffort{store: store, logger: logger}
}

// Delete removes key, logging instead of returning any failure.
// The reason names the operation that triggered the delete.
func (b *BestEffort) Delete(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}

	// The primary operation may have been cancelled by the client; cleanup
	// still has to be attempted.
	ctx = context.WithoutCancel(ctx)

	if err := b.store.Delete(ctx, key); err != nil {
		b.failures.Add(1)
		b.logger.Error("Best-effort media delete failed",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}

	b.logger.Debug("Deleted media", zap.String("key", key), zap.String("reason", reason))
}

// Failures returns how many deletes have failed since start
func (b *BestEffort) Failures() int64 {
	return b.failures.Load()
}
