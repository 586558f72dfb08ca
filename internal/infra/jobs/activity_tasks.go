// Package jobs provides background job definitions and handlers using Asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
)

// Task types for activity jobs
const (
	TypeActivityRecord = "activity:record"
)

// NewActivityRecordTask creates a task that persists one membership event.
func NewActivityRecordTask(event board.Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity event payload: %w", err)
	}
	return asynq.NewTask(
		TypeActivityRecord,
		data,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Queue("activity"),
	), nil
}

// ActivityStore persists membership events for the activity feed.
type ActivityStore interface {
	Insert(ctx context.Context, event board.Event) error
}

// ActivityTaskHandler processes activity record tasks.
type ActivityTaskHandler struct {
	store  ActivityStore
	logger *logger.Logger
}

// NewActivityTaskHandler creates a handler backed by the given store.
func NewActivityTaskHandler(store ActivityStore, log *logger.Logger) *ActivityTaskHandler {
	return &ActivityTaskHandler{
		store:  store,
		logger: log.With("component", "activity_task_handler"),
	}
}

// HandleRecord persists the event carried by the task.
func (h *ActivityTaskHandler) HandleRecord(ctx context.Context, t *asynq.Task) error {
	var event board.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("failed to unmarshal activity event payload: %w", err)
	}

	if err := h.store.Insert(ctx, event); err != nil {
		h.logger.Error("failed to persist activity event",
			"action", string(event.Action),
			"board_id", event.BoardID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to persist activity event: %w", err)
	}

	h.logger.Debug("activity event persisted",
		"action", string(event.Action),
		"board_id", event.BoardID.String(),
	)
	return nil
}
