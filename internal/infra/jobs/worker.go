package jobs

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/boardkit/api/pkg/logger"
)

// WorkerConfig holds the configuration for the job worker.
type WorkerConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int

	// LinkSweepInterval is how often the expired invite link sweep
	// runs. Zero disables the periodic sweep.
	LinkSweepInterval time.Duration
}

// Worker processes background jobs.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *logger.Logger
}

// NewWorker creates a new background job worker.
func NewWorker(cfg WorkerConfig, activity ActivityStore, sweeper InviteLinkSweeper, log *logger.Logger) (*Worker, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"default":     10,
				"activity":    5,
				"maintenance": 2,
			},
		},
	)

	mux := asynq.NewServeMux()

	activityHandler := NewActivityTaskHandler(activity, log)
	mux.HandleFunc(TypeActivityRecord, activityHandler.HandleRecord)

	maintenanceHandler := NewMaintenanceTaskHandler(sweeper, log)
	mux.HandleFunc(TypeSweepInviteLinks, maintenanceHandler.HandleSweepInviteLinks)

	var scheduler *asynq.Scheduler
	if cfg.LinkSweepInterval > 0 {
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
		spec := fmt.Sprintf("@every %s", cfg.LinkSweepInterval)
		if _, err := scheduler.Register(spec, NewSweepInviteLinksTask()); err != nil {
			return nil, fmt.Errorf("failed to register invite link sweep: %w", err)
		}
	}

	return &Worker{
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		logger:    log,
	}, nil
}

// Start starts the worker and, when configured, the periodic scheduler.
func (w *Worker) Start() error {
	w.logger.Info("starting job worker")
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	return w.server.Start(w.mux)
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() {
	w.logger.Info("stopping job worker")
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
}
