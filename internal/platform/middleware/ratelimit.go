package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/auth"
)

// idleBucketTTL is how long a caller may stay silent before its bucket is
// dropped and recreated full on the next request.
const idleBucketTTL = 10 * time.Minute

// RateLimitConfig configures one token-bucket limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Skipper bypasses the limiter for requests it returns true for.
	Skipper func(c echo.Context) bool
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastSeen   time.Time
}

func newTokenBucket(rate float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastSeen:   now,
	}
}

// take consumes one token. When none is left it reports how many whole
// seconds the caller should wait.
func (b *tokenBucket) take(now time.Time) (remaining int, retryAfter int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastSeen).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return int(b.tokens), 0, true
	}
	if b.refillRate <= 0 {
		return 0, 1, false
	}
	return 0, int((1-b.tokens)/b.refillRate) + 1, false
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastSeen)
}

type bucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	cfg       RateLimitConfig
	lastSweep time.Time
	now       func() time.Time
}

func newBucketStore(cfg RateLimitConfig) *bucketStore {
	return &bucketStore{
		buckets:   make(map[string]*tokenBucket),
		cfg:       cfg,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *bucketStore) bucket(key string, now time.Time) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > idleBucketTTL {
		for k, b := range s.buckets {
			if b.idleSince(now) > idleBucketTTL {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = newTokenBucket(s.cfg.RequestsPerSecond, s.cfg.BurstSize, now)
		s.buckets[key] = b
	}
	return b
}

// rateLimitKey identifies the caller: the authenticated user when there is
// one, otherwise the client IP.
func rateLimitKey(c echo.Context) string {
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil {
		return "user:" + strconv.FormatInt(actor.UserID, 10)
	}
	return "ip:" + c.RealIP()
}

// RateLimit rejects callers that exceed cfg with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return newBucketStore(cfg).middleware()
}

func (s *bucketStore) middleware() echo.MiddlewareFunc {
	limit := strconv.Itoa(s.cfg.BurstSize)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.cfg.Skipper != nil && s.cfg.Skipper(c) {
				return next(c)
			}

			now := s.now()
			remaining, retryAfter, ok := s.bucket(rateLimitKey(c), now).take(now)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			return next(c)
		}
	}
}
