package main

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const ctxUserID = "userID"

// loggingMiddleware logs one line per request with status, latency, client
// ip, method and path.
func loggingMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []interface{}{
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, "query", c.Request.URL.RawQuery)
		}
		logger.Info("request", fields...)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

// AuthMiddleware requires a valid bearer token and stores the user id in
// the context.
func (a *API) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present || token == "" {
			respondError(c, a.logger, unauthorized("Authorization token is required."))
			return
		}
		claims, err := a.auth.ParseToken(token)
		if err != nil {
			respondError(c, a.logger, err)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth identifies the requester when a token is sent. Requests
// without an Authorization header continue anonymously; a bad token is
// still rejected.
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, present := bearerToken(c); !present {
			c.Next()
			return
		}
		a.AuthMiddleware()(c)
	}
}

// requesterID is the authenticated user id, or "" for anonymous requests.
func requesterID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// ipRateLimiter hands out a token bucket per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// reset drops all buckets; called periodically so the map does not grow forever.
func (l *ipRateLimiter) reset() {
	l.mu.Lock()
	l.limiters = make(map[string]*rate.Limiter)
	l.mu.Unlock()
}

// RateLimit rejects requests beyond the per-IP budget with 429.
func (a *API) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.limiter == nil {
			c.Next()
			return
		}
		if !a.limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests.", "statusCode": http.StatusTooManyRequests})
			return
		}
		c.Next()
	}
}
