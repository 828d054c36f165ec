package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
)

func newRateLimitedServer(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := c.Request().Header.Get("X-Test-User"); uid != "" {
				actor := &auth.Actor{UserID: int64(len(uid)), Role: auth.RolePatient}
				c.SetRequest(c.Request().WithContext(auth.WithActor(c.Request().Context(), actor)))
			}
			return next(c)
		}
	})
	e.Use(mw)
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func postLogin(e *echo.Echo, remoteAddr, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	e := newRateLimitedServer(RateLimit(RateLimitConfig{RequestsPerSecond: 0.5, BurstSize: 2}))

	for i := 0; i < 2; i++ {
		if rec := postLogin(e, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := postLogin(e, "10.0.0.1:1234", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if ra := rec.Header().Get("Retry-After"); ra == "" || ra == "0" {
		t.Errorf("expected positive Retry-After, got %q", ra)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected no remaining requests, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	if rec := postLogin(e, "10.0.0.2:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("expected other client to be allowed, got %d", rec.Code)
	}
}

func TestRateLimit_KeysByUserWhenAuthenticated(t *testing.T) {
	e := newRateLimitedServer(RateLimit(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 1}))

	if rec := postLogin(e, "10.0.0.1:1234", "a"); rec.Code != http.StatusOK {
		t.Fatalf("expected first user to be allowed, got %d", rec.Code)
	}
	if rec := postLogin(e, "10.0.0.1:1234", "bb"); rec.Code != http.StatusOK {
		t.Errorf("expected second user behind the same IP to be allowed, got %d", rec.Code)
	}
	if rec := postLogin(e, "10.0.0.1:1234", "a"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected first user to be limited, got %d", rec.Code)
	}
}

func TestRateLimit_Skipper(t *testing.T) {
	e := newRateLimitedServer(RateLimit(RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         0,
		Skipper:           func(c echo.Context) bool { return true },
	}))

	rec := postLogin(e, "10.0.0.1:1234", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected skipped request to pass, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("expected no rate limit headers on skipped request")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	b := newTokenBucket(2, 1, start)

	if _, _, ok := b.take(start); !ok {
		t.Fatal("expected first token")
	}
	if _, retry, ok := b.take(start); ok || retry != 1 {
		t.Fatalf("expected rejection with retry 1, got ok=%v retry=%d", ok, retry)
	}
	if _, _, ok := b.take(start.Add(600 * time.Millisecond)); !ok {
		t.Error("expected token after refill")
	}
}

func TestBucketStore_DropsIdleBuckets(t *testing.T) {
	s := newBucketStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	start := time.Now()
	s.bucket("ip:10.0.0.1", start)

	later := start.Add(2 * idleBucketTTL)
	s.bucket("ip:10.0.0.2", later)

	if _, ok := s.buckets["ip:10.0.0.1"]; ok {
		t.Error("expected idle bucket to be dropped")
	}
	if len(s.buckets) != 1 {
		t.Errorf("expected 1 bucket, got %d", len(s.buckets))
	}
}
