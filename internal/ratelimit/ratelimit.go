// Package ratelimit implements fixed-window request limits backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bucket is a named request class with its own limit.
type Bucket struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	BucketAuth   = Bucket{Name: "auth", Limit: 10, Window: time.Minute}
	BucketUpload = Bucket{Name: "upload", Limit: 20, Window: time.Minute}
	BucketWrite  = Bucket{Name: "write", Limit: 60, Window: time.Minute}
	BucketRead   = Bucket{Name: "read", Limit: 300, Window: time.Minute}
)

// Exempt reports whether a path (relative to the API root) skips limiting.
// Provider webhooks are signed and retried by the sender.
func Exempt(path string) bool {
	return strings.HasPrefix(path, "/webhooks/")
}

// SelectBucket picks the bucket for a request path (relative to the API root) and method.
func SelectBucket(method, path string) Bucket {
	switch {
	case strings.HasPrefix(path, "/auth/"):
		return BucketAuth
	case strings.HasPrefix(path, "/uploads/"):
		return BucketUpload
	case method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions:
		return BucketRead
	default:
		return BucketWrite
	}
}

// Identity is `user:{id}` for authenticated callers, `ip:{addr}` otherwise.
func Identity(userID string, r *http.Request) string {
	if userID != "" {
		return "user:" + userID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WindowStart truncates now to the start of the bucket's window.
func WindowStart(b Bucket, now time.Time) time.Time {
	return now.Truncate(b.Window)
}

// Key builds the counter key for an identity in the window containing now.
func Key(b Bucket, identity string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", b.Name, identity, WindowStart(b, now).Unix())
}

// Result describes one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter is the wait until the window resets, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.Reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// Limiter decides whether a request may proceed.
type Limiter interface {
	Allow(ctx context.Context, b Bucket, identity string) (Result, error)
}

// RedisLimiter counts requests with INCR and sets the window TTL in the same pipeline.
type RedisLimiter struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, b Bucket, identity string) (Result, error) {
	now := l.now()
	key := Key(b, identity, now)
	reset := WindowStart(b, now).Add(b.Window)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, b.Window)
		return nil
	})
	if err != nil {
		return Result{Allowed: true, Limit: b.Limit, Remaining: b.Limit, Reset: reset}, fmt.Errorf("rate limit counter %s: %w", key, err)
	}

	count := int(incr.Val())
	remaining := b.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= b.Limit, Limit: b.Limit, Remaining: remaining, Reset: reset}, nil
}
