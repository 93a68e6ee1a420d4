package rate_limiter

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimiter keeps one token bucket per client key. Buckets of idle clients
// expire from the LRU after ttl.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  *expirable.LRU[string, *rate.Limiter]
	limit     rate.Limit
	burst     int
	perMinute int
}

func NewRateLimiter(perMinute, burst int, ttl time.Duration) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		limiters:  expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, ttl),
		limit:     limit,
		burst:     burst,
		perMinute: perMinute,
	}
}

func (rl *RateLimiter) IsAllowed(key string) bool {
	return rl.limiter(key).Allow()
}

// GetRemainingRequests returns the number of whole tokens left for the key.
func (rl *RateLimiter) GetRemainingRequests(key string) int {
	if rl.limit == rate.Inf {
		return rl.burst
	}

	remaining := int(rl.limiter(key).Tokens())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (rl *RateLimiter) PerMinute() int {
	return rl.perMinute
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}
