package middleware

import (
	"net"
	"net/http"
	"strconv"

	"foodshare/internal/rate_limiter"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware rejects clients that exhausted their token bucket with
// HTTP 429.
func RateLimitMiddleware(limiter *rate_limiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)

		if !limiter.IsAllowed(key) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.PerMinute()))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.PerMinute()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemainingRequests(key)))
		c.Next()
	}
}

// clientKey uses the address gin resolves against the engine's trusted
// proxies, so forwarding headers only count when set by a trusted proxy.
// Clients behind a private address share an IP, so the user agent is appended
// to tell them apart.
func clientKey(c *gin.Context) string {
	clientIP := c.ClientIP()

	if isPrivateIP(clientIP) {
		return clientIP + ":" + c.GetHeader("User-Agent")
	}
	return clientIP
}

func isPrivateIP(raw string) bool {
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
