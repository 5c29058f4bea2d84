package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"learnhub/internal/api/v1/dto"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		db, redis  PingFunc
		wantStatus int
		want       dto.HealthResponseDTO
	}{
		{"all up", ok, ok, http.StatusOK, dto.HealthResponseDTO{Status: "ok", DB: "ok", Redis: "ok"}},
		{"redis down", ok, down, http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", DB: "ok", Redis: "error"}},
		{"redis not configured", ok, nil, http.StatusOK, dto.HealthResponseDTO{Status: "ok", DB: "ok", Redis: "disabled"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(tt.db, tt.redis, zerolog.Nop()).RegisterRoutes(r)

			rec := do(t, r, http.MethodGet, "/healthz", nil, "")
			require.Equal(t, tt.wantStatus, rec.Code)
			var got dto.HealthResponseDTO
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
