package workflow

import (
	"context"
	"errors"
	"strings"

	"pps1c/internal/logging"
	"pps1c/internal/queue"
	"pps1c/internal/services"
)

// maxStageRetries bounds how often a transient stage failure is rolled back
// before the item is marked failed.
const maxStageRetries = 3

func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.baseLogger()).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = stg.name + " failed without error detail"
	}

	rollback, canRollback := queue.RollbackStatus(item.Status)
	retryable := services.IsRetryable(stageErr) && canRollback && item.RetryCount < maxStageRetries

	if retryable {
		item.Status = rollback
		item.RetryCount++
		item.ErrorMessage = message
		item.ProgressPercent = 0
		item.ProgressMessage = message
		item.LastHeartbeat = nil
		m.observeStage(stg.name, "retry", 0)
		logger.Warn("stage failed, will retry",
			logging.Error(stageErr),
			logging.String(logging.FieldEventType, "stage_retry"),
			logging.String("resolved_status", string(rollback)),
			logging.Int("retry_count", item.RetryCount),
		)
	} else {
		item.SetFailed(message)
		m.observeStage(stg.name, "failure", 0)
		logger.Error("stage failed",
			logging.Error(stageErr),
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("resolved_status", string(queue.StatusFailed)),
			logging.String("error_message", message),
			logging.Bool(logging.FieldAlert, true),
		)
	}

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
}
