package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectBucket(t *testing.T) {
	tests := []struct {
		method, path string
		want         Bucket
	}{
		{http.MethodPost, "/auth/login", BucketAuth},
		{http.MethodGet, "/auth/oauth/github/login", BucketAuth},
		{http.MethodPost, "/uploads/images", BucketUpload},
		{http.MethodGet, "/courses", BucketRead},
		{http.MethodHead, "/courses", BucketRead},
		{http.MethodPatch, "/courses/abc", BucketWrite},
		{http.MethodDelete, "/posts/abc", BucketWrite},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectBucket(tt.method, tt.path))
		})
	}
}

func TestExempt(t *testing.T) {
	assert.True(t, Exempt("/webhooks/stripe"))
	assert.False(t, Exempt("/courses/abc/checkout"))
	assert.False(t, Exempt("/webhooks"))
}

func TestIdentity(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "user:u1", Identity("u1", r))
	assert.Equal(t, "ip:10.0.0.7", Identity("", r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.9", Identity("", r))
}

func TestKeyUsesWindowStart(t *testing.T) {
	b := Bucket{Name: "read", Limit: 10, Window: time.Minute}
	now := time.Date(2026, 5, 4, 12, 30, 45, 0, time.UTC)
	start := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, start, WindowStart(b, now))
	assert.Equal(t, "ratelimit:read:user:u1:1777897800", Key(b, "user:u1", now))
	assert.Equal(t, Key(b, "user:u1", now), Key(b, "user:u1", now.Add(14*time.Second)))
	assert.NotEqual(t, Key(b, "user:u1", now), Key(b, "user:u1", now.Add(15*time.Second)))
}

func TestRetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 30, 45, 500_000_000, time.UTC)
	res := Result{Reset: time.Date(2026, 5, 4, 12, 31, 0, 0, time.UTC)}
	assert.Equal(t, 15*time.Second, res.RetryAfter(now))
	assert.Zero(t, res.RetryAfter(res.Reset.Add(time.Second)))
}
