package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"learnhub/internal/ratelimit"

	"github.com/rs/zerolog"
)

// RateLimitMiddleware enforces per-identity request limits. It must run after
// OptionalAuth so authenticated callers are keyed by user. apiPrefix is stripped
// from the path before the bucket is selected. Webhook paths are not limited.
// Limiter errors fail open.
func RateLimitMiddleware(limiter ratelimit.Limiter, apiPrefix string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimPrefix(r.URL.Path, apiPrefix)
			if ratelimit.Exempt(path) {
				next.ServeHTTP(w, r)
				return
			}
			bucket := ratelimit.SelectBucket(r.Method, path)
			identity := ratelimit.Identity(UserID(r.Context()), r)

			res, err := limiter.Allow(r.Context(), bucket, identity)
			if err != nil {
				logger.Warn().Err(err).Str("bucket", bucket.Name).Msg("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
			if !res.Allowed {
				retry := res.RetryAfter(time.Now())
				h.Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
