package pipeline

import (
	"context"

	"log/slog"

	"pps1c/internal/logging"
	"pps1c/internal/queue"
)

// persistProgress updates the item's progress fields and writes them through
// so status consumers see long stages advance. Persistence failures are
// logged, not fatal.
func persistProgress(ctx context.Context, store *queue.Store, logger *slog.Logger, item *queue.Item, message string, percent float64) {
	item.SetProgress(item.ProgressStage, message, percent)
	if store == nil {
		return
	}
	if err := store.Update(ctx, item); err != nil {
		logging.WithContext(ctx, logger).Warn("failed to persist stage progress", logging.Error(err))
	}
}
