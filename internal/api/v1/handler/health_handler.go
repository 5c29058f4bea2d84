package handler

import (
	"context"
	"net/http"
	"time"

	"learnhub/internal/api/v1/dto"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// PingFunc checks one backing dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	pingDB    PingFunc
	pingRedis PingFunc
	logger    zerolog.Logger
}

func NewHealthHandler(pingDB, pingRedis PingFunc, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingRedis: pingRedis,
		logger:    logger.With().Str("handler", "HealthHandler").Logger(),
	}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
}

// health godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponseDTO
// @Failure 503 {object} dto.HealthResponseDTO
// @Router /healthz [get]
func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := dto.HealthResponseDTO{Status: "ok", DB: h.check(ctx, "db", h.pingDB), Redis: h.check(ctx, "redis", h.pingRedis)}
	status := http.StatusOK
	if resp.DB == "error" || resp.Redis == "error" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) check(ctx context.Context, name string, ping PingFunc) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		h.logger.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
		return "error"
	}
	return "ok"
}
