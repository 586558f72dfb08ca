package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/internal/config"
	"github.com/boardkit/api/internal/infra/http"
	"github.com/boardkit/api/internal/infra/http/handler"
	"github.com/boardkit/api/internal/infra/http/middleware"
	"github.com/boardkit/api/internal/infra/jobs"
	"github.com/boardkit/api/internal/infra/postgres"
	"github.com/boardkit/api/internal/infra/redis"
	"github.com/boardkit/api/internal/infra/storage"
	"github.com/boardkit/api/internal/infra/websocket"
	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	// Infrastructure
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer closeWithLog(db, "database", log)
	log.Info("database connected")

	redisClient, err := redis.New(&cfg.Redis, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return 1
	}
	defer closeWithLog(redisClient, "redis", log)
	log.Info("redis connected")

	// Repositories
	boardRepo := postgres.NewBoardRepository(db)
	cardRepo := postgres.NewCardRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	userRepo := postgres.NewUserRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	// Authorization
	resolver := access.NewResolver(boardRepo)
	gate := access.NewGate(resolver, boardRepo, boardRepo, boardRepo)

	// Background job client; services record activity through it.
	jobClient := jobs.NewClient(jobs.ClientConfig{
		RedisAddr:     cfg.Redis.Addr(),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}, log)
	defer closeWithLog(jobClient, "job client", log)

	// WebSocket hub; board channel subscriptions go through the gate.
	hub := websocket.NewHub(func(ctx context.Context, userID, channel string) bool {
		_, rawID := websocket.ParseChannel(channel)
		boardID, err := shared.IDFromString(rawID)
		if err != nil {
			return false
		}
		uid, err := shared.IDFromString(userID)
		if err != nil {
			return false
		}
		b, err := boardRepo.GetByID(ctx, boardID)
		if err != nil {
			return false
		}
		return gate.CanView(ctx, b, uid) == nil
	}, log)

	// Activity events are both persisted (via the queue) and fanned
	// out to live subscribers.
	recorder := &fanoutRecorder{queue: jobClient, hub: hub}

	// Services
	authService := app.NewAuthService(userRepo, cfg.Auth, log)
	workspaceService := app.NewWorkspaceService(workspaceRepo, log)
	boardService := app.NewBoardService(boardRepo, workspaceRepo, gate, log)
	listService := app.NewListService(boardRepo, gate, log)
	labelService := app.NewLabelService(boardRepo, gate, log)
	membershipService := app.NewMembershipService(boardRepo, gate, resolver, log,
		app.WithMembershipActivityRecorder(recorder),
	)
	inviteLinkService := app.NewInviteLinkService(boardRepo, gate, resolver, cfg.Invite.MaxExpiry, log,
		app.WithInviteLinkActivityRecorder(recorder),
	)
	batchService := app.NewBatchService(boardRepo, cardRepo, gate, log)
	activityService := app.NewActivityService(boardRepo, activityRepo, gate, log)

	cardOpts := []app.CardServiceOption{}
	if cfg.Storage.IsConfigured() {
		blobStore, err := storage.NewS3Store(ctx, &cfg.Storage, log)
		if err != nil {
			log.Error("failed to initialize object storage", "error", err)
			return 1
		}
		cardOpts = append(cardOpts, app.WithBlobStore(blobStore))
		log.Info("object storage initialized", "bucket", cfg.Storage.Bucket)
	}
	cardService := app.NewCardService(boardRepo, cardRepo, gate, log, cardOpts...)
	log.Info("services initialized")

	// Start the hub before any client can connect.
	wsCtx, wsCancel := context.WithCancel(ctx)
	defer wsCancel()
	go hub.Run(wsCtx)

	wsHandler := websocket.NewHandler(hub, authService.TokenGenerator(), log)

	// Handlers
	handlers := http.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.Auth, log),
		Workspace:  handler.NewWorkspaceHandler(workspaceService, log),
		Board:      handler.NewBoardHandler(boardService, activityService, log),
		Member:     handler.NewMemberHandler(membershipService, log),
		InviteLink: handler.NewInviteLinkHandler(inviteLinkService, log),
		List:       handler.NewListHandler(listService, log),
		Card:       handler.NewCardHandler(cardService, log),
		Label:      handler.NewLabelHandler(labelService, log),
		Batch:      handler.NewBatchHandler(batchService, log),
		Health:     handler.NewHealthHandler(db, redisClient, log),
		WS:         wsHandler.ServeWS,
	}

	redeemLimiter := redis.NewRateLimiter(redisClient, "ratelimit:redeem",
		cfg.RateLimit.RedeemPerMinute, cfg.RateLimit.RedeemWindow, log)

	router := http.NewRouter(handlers, http.RouterConfig{
		Auth:        middleware.Auth(authService.TokenGenerator(), &cfg.Auth, log),
		RedeemLimit: middleware.RedeemRateLimit(redeemLimiter, log),
	})

	server := http.NewServer(cfg, log, router)

	// Background worker: activity persistence and invite link sweeps.
	var worker *jobs.Worker
	if cfg.Worker.Enabled {
		worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisAddr:         cfg.Redis.Addr(),
			RedisPassword:     cfg.Redis.Password,
			RedisDB:           cfg.Redis.DB,
			Concurrency:       cfg.Worker.Concurrency,
			LinkSweepInterval: cfg.Worker.LinkSweepInterval,
		}, activityRepo, inviteLinkService, log)
		if err != nil {
			log.Error("failed to initialize worker", "error", err)
			return 1
		}
		if err := worker.Start(); err != nil {
			log.Error("failed to start worker", "error", err)
			return 1
		}
		log.Info("worker started", "concurrency", cfg.Worker.Concurrency)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()
	log.Info("application started", "http_addr", cfg.Server.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	wsCancel()
	if worker != nil {
		worker.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

// fanoutRecorder persists activity via the job queue and pushes it to
// live WebSocket subscribers. Fan-out failures do not fail the write.
type fanoutRecorder struct {
	queue *jobs.Client
	hub   *websocket.Hub
}

func (r *fanoutRecorder) Record(ctx context.Context, event board.Event) error {
	if err := r.queue.Record(ctx, event); err != nil {
		return err
	}
	r.hub.PublishBoardEvent(event)
	return nil
}

func initLogger(cfg *config.Config) *logger.Logger {
	if cfg.IsProduction() {
		return logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: os.Stdout,
		})
	}
	return logger.NewDevelopment()
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
