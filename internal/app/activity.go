package app

import (
	"context"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
)

// ActivityRecorder receives one event per membership change. Recording
// is best-effort: a failed record never fails the mutation it describes.
type ActivityRecorder interface {
	Record(ctx context.Context, event board.Event) error
}

// NopActivityRecorder discards all events. Used in tests and when the
// worker transport is disabled.
type NopActivityRecorder struct{}

// Record implements ActivityRecorder.
func (NopActivityRecorder) Record(_ context.Context, _ board.Event) error {
	return nil
}

// recordActivity records a membership event, logging instead of failing
// when the recorder is unavailable.
func recordActivity(ctx context.Context, recorder ActivityRecorder, log *logger.Logger, event board.Event) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, event); err != nil {
		metrics.ActivityEventsDroppedTotal.Inc()
		log.Warn("failed to record activity event",
			"action", string(event.Action),
			"board_id", event.BoardID.String(),
			"error", err,
		)
		return
	}
	metrics.ActivityEventsTotal.WithLabelValues(string(event.Action)).Inc()
}
