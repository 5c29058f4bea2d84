package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/internal/middleware"
	"learnhub/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-test-secret"
	testUserID = "7d3a1c5e-2f4b-4c8e-9a1d-0b6e5f4c3a21"
	testCourse = "0f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
)

type routeRegistrar func(r chi.Router, authMw func(http.Handler) http.Handler)

// newTestRouter wires handler routes behind the same auth middlewares the API uses.
func newTestRouter(register routeRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OptionalAuth(testSecret))
	register(r, middleware.AuthMiddleware(testSecret, zerolog.Nop()))
	return r
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := util.IssueJWT(userID, "ada@example.com", "student", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}

// do sends a request; body is JSON-encoded unless it is already a string.
func do(t *testing.T, h http.Handler, method, path string, body any, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newValidator() *validator.Validate {
	return validator.New()
}
