package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/api/middleware"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/cache"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/models"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils/response"
)

const statusPingTimeout = 3 * time.Second

// Pinger is the live round-trip probe into the store's read route.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type StatusResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	CacheStatus   string `json:"cache_status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type DegradedResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type StatusHandler struct {
	db      Pinger
	health  *cache.Health
	started time.Time
}

func NewStatusHandler(db Pinger, health *cache.Health) *StatusHandler {
	return &StatusHandler{db: db, health: health, started: time.Now()}
}

// Status degrades only on a store failure. A down cache changes the
// advisory cache_status field, never the response code.
func (h *StatusHandler) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), statusPingTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.Error("Database unreachable", slog.String("error", err.Error()))
			response.WriteJson(w, http.StatusServiceUnavailable, DegradedResponse{
				Status: "degraded",
				Error:  "database unreachable",
			})
			return
		}

		response.WriteJson(w, http.StatusOK, StatusResponse{
			Status:        "ok",
			Database:      "up",
			CacheStatus:   models.CacheStatus(h.health.Up()),
			UptimeSeconds: int64(time.Since(h.started).Seconds()),
		})

	}
}
