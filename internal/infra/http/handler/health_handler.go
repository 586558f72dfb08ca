package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/boardkit/api/pkg/logger"
)

// Pinger verifies that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a new HealthHandler. Either dependency may
// be nil; it is then skipped in readiness checks.
func NewHealthHandler(db, cache Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: log.With("handler", "health"),
	}
}

// HealthResponse reports overall and per-dependency status.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Live reports process liveness.
// GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports whether dependencies are reachable.
// GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	var mu sync.Mutex

	deps := map[string]Pinger{
		"database": h.db,
		"redis":    h.cache,
	}

	// Plain group so one failing check does not cancel the others.
	var g errgroup.Group
	for name, dep := range deps {
		if dep == nil {
			continue
		}
		g.Go(func() error {
			err := dep.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error(name+" health check failed", "error", err)
				checks[name] = "unavailable"
				return err
			}
			checks[name] = "ok"
			return nil
		})
	}

	status := http.StatusOK
	resp := HealthResponse{Status: "ok", Checks: checks}
	if err := g.Wait(); err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	respondJSON(w, status, resp)
}
