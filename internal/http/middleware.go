package http

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"focus-tracker/internal/auth"
	"focus-tracker/internal/idgen"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	callerKey       = "caller"
)

// authedHandler receives the verified caller explicitly.
type authedHandler func(c *gin.Context, caller auth.Identity)

// authed verifies the bearer token, including that its user still exists,
// before calling next.
func (h *Handler) authed(next authedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			fail(c, http.StatusUnauthorized, "Unauthorized: Missing token", nil)
			return
		}

		user, err := h.svc.Auth.Verify(c.Request.Context(), token)
		if err != nil {
			h.failErr(c, err)
			return
		}

		c.Set(callerKey, user.Username)
		next(c, auth.Identity{Username: user.Username, Email: user.Email})
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = idgen.New()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		entry := h.log(c).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if caller := c.GetString(callerKey); caller != "" {
			entry = entry.WithField("user", caller)
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

func (h *Handler) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				h.log(c).WithFields(logrus.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic while handling request")
				fail(c, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		c.Next()
	}
}

func (h *Handler) log(c *gin.Context) *logrus.Entry {
	return h.logger.WithField(requestIDKey, c.GetString(requestIDKey))
}

func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := h.limiter.get(c.ClientIP())
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			c.Header("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
			h.log(c).WithField("ip", c.ClientIP()).Warn("auth rate limit exceeded")
			fail(c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		c.Next()
	}
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limit:       limit,
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) >= 5*time.Minute {
		l.lastCleanup = time.Now()
		// a full bucket means the client has been idle
		for key, limiter := range l.limiters {
			if limiter.Tokens() >= float64(l.burst) {
				delete(l.limiters, key)
			}
		}
	}

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}
