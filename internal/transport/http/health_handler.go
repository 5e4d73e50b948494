package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"capitalforge/internal/services"
	"capitalforge/pkg/contracts"
)

// HealthHandler serves liveness and version endpoints.
type HealthHandler struct {
	store   *services.SnapshotStore
	logger  *slog.Logger
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store *services.SnapshotStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		logger:  logger.With(slog.String("handler", "health")),
		started: time.Now().UTC(),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"uptime":    time.Since(h.started).String(),
		"snapshots": h.store.Len(),
		"version":   contracts.Version,
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
