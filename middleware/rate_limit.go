package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/famfit/utils"
)

const limiterIdleTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// limiterSet holds one token bucket per client IP.
type limiterSet struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rateLimiter
}

// RateLimitMiddleware applies an IP based token bucket allowing perMinute requests per minute.
// Each call builds an independent set of buckets, so groups can be limited separately.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	perMinute = max(perMinute, 1)
	set := &limiterSet{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		limiters: map[string]*rateLimiter{},
	}

	return func(ctx *gin.Context) {
		if !set.allow(ctx.ClientIP(), time.Now()) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, l := range s.limiters {
		if now.After(l.expires) {
			delete(s.limiters, k)
		}
	}

	l, ok := s.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l.limiter.AllowN(now, 1)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
