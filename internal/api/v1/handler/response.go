package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeAndValidate reads a JSON body into dst and validates it, writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// pathID reads a UUID path parameter. Malformed IDs cannot match a row, so they are a 404.
func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (string, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, resource+" not found", http.StatusNotFound)
		return "", false
	}
	return id.String(), true
}

// writeServiceError maps service errors to HTTP statuses. Unexpected errors are
// logged and reported as "Failed to <action>".
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, action string) {
	var notReady *service.NotReadyError
	switch {
	case errors.As(err, &notReady):
		writeJSON(w, http.StatusBadRequest, dto.NotReadyResponseDTO{Error: notReady.Error(), Missing: notReady.Missing})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidSignature):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, capitalize(err.Error()), http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Error().Err(err).Str("action", action).Msg("Request failed")
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toPositionUpdates(list []dto.PositionDTO) []model.PositionUpdate {
	out := make([]model.PositionUpdate, len(list))
	for i, p := range list {
		out[i] = model.PositionUpdate{ID: p.ID, Position: p.Position}
	}
	return out
}

// queryInt reads a non-negative integer query parameter, falling back to def when absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		http.Error(w, "Invalid query parameter: "+name, http.StatusBadRequest)
		return 0, false
	}
	return n, true
}
