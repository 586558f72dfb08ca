package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
)

// Client manages enqueueing background jobs using Asynq.
type Client struct {
	client *asynq.Client
	logger *logger.Logger
}

// ClientConfig contains configuration for the job client.
type ClientConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewClient creates a new job client for enqueueing tasks.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
		logger: log.With("component", "job_client"),
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Record implements app.ActivityRecorder by enqueueing the event for
// asynchronous persistence.
func (c *Client) Record(ctx context.Context, event board.Event) error {
	task, err := NewActivityRecordTask(event)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.logger.Error("failed to enqueue activity event",
			"action", string(event.Action),
			"board_id", event.BoardID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Debug("activity event queued",
		"task_id", info.ID,
		"action", string(event.Action),
		"queue", info.Queue,
	)
	return nil
}

// EnqueueSweepInviteLinks enqueues an immediate invite link sweep.
func (c *Client) EnqueueSweepInviteLinks(ctx context.Context) error {
	info, err := c.client.EnqueueContext(ctx, NewSweepInviteLinksTask())
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Info("invite link sweep queued", "task_id", info.ID, "queue", info.Queue)
	return nil
}
