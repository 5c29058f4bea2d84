package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const deadLetterListLimit = 100

// DebugHandler exposes development-only introspection routes.
type DebugHandler struct {
	authService service.AuthService
	dlqService  service.DLQService
	logger      zerolog.Logger
}

func NewDebugHandler(authService service.AuthService, dlqService service.DLQService, logger zerolog.Logger) *DebugHandler {
	return &DebugHandler{
		authService: authService,
		dlqService:  dlqService,
		logger:      logger.With().Str("handler", "DebugHandler").Logger(),
	}
}

func (h *DebugHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Route("/debug", func(r chi.Router) {
		r.Get("/oauth/providers", h.providers)
		r.With(authMw).Get("/session", h.session)
		r.With(authMw).Get("/dead-letters", h.deadLetters)
	})
}

// session godoc
// @Summary Decode the caller's session token
// @Tags debug
// @Produce json
// @Success 200 {object} dto.SessionResponseDTO
// @Router /debug/session [get]
func (h *DebugHandler) session(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	resp := dto.SessionResponseDTO{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DebugHandler) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ProvidersResponseDTO{Providers: h.authService.Providers()})
}

// deadLetters godoc
// @Summary List dead-lettered queue messages
// @Tags debug
// @Produce json
// @Success 200 {array} dto.DeadLetterResponseDTO
// @Router /debug/dead-letters [get]
func (h *DebugHandler) deadLetters(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", deadLetterListLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > deadLetterListLimit {
		limit = deadLetterListLimit
	}
	msgs, err := h.dlqService.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve dead letters")
		return
	}
	out := make([]dto.DeadLetterResponseDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.DeadLetterResponseDTO{
			ID:        m.ID,
			QueueName: m.QueueName,
			MessageID: m.MessageID,
			Payload:   []byte(m.Payload),
			LastError: m.LastError,
			Status:    m.Status,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
