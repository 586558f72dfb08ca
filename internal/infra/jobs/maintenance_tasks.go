package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/logger"
)

// Task types for maintenance jobs
const (
	TypeSweepInviteLinks = "maintenance:sweep_invite_links"
)

// NewSweepInviteLinksTask creates a task that deactivates expired invite links.
func NewSweepInviteLinksTask() *asynq.Task {
	return asynq.NewTask(
		TypeSweepInviteLinks,
		nil,
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("maintenance"),
	)
}

// InviteLinkSweeper deactivates invite links whose expiry has passed.
type InviteLinkSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// MaintenanceTaskHandler processes maintenance tasks.
type MaintenanceTaskHandler struct {
	sweeper InviteLinkSweeper
	logger  *logger.Logger
}

// NewMaintenanceTaskHandler creates a handler backed by the given sweeper.
func NewMaintenanceTaskHandler(sweeper InviteLinkSweeper, log *logger.Logger) *MaintenanceTaskHandler {
	return &MaintenanceTaskHandler{
		sweeper: sweeper,
		logger:  log.With("component", "maintenance_task_handler"),
	}
}

// HandleSweepInviteLinks deactivates every expired invite link.
func (h *MaintenanceTaskHandler) HandleSweepInviteLinks(ctx context.Context, _ *asynq.Task) error {
	swept, err := h.sweeper.SweepExpired(ctx)
	if err != nil {
		h.logger.Error("invite link sweep failed", "error", err)
		return fmt.Errorf("failed to sweep invite links: %w", err)
	}

	metrics.InviteLinksSweptTotal.Add(float64(swept))
	if swept > 0 {
		h.logger.Info("expired invite links deactivated", "count", swept)
	}
	return nil
}
