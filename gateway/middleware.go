package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/possales/pkg/auth"
	"github.com/example/possales/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionCookie   = "session"
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "user"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

func (g *Gateway) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, "login required")
			return
		}

		user, err := g.deps.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				abortError(c, http.StatusUnauthorized, "login required")
				return
			}
			g.logger.Error("Failed to authenticate request", zap.Error(err))
			abortError(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// rateLimit counts requests per client and path in fixed windows. Limiter
// errors let the request through.
func (g *Gateway) rateLimit() gin.HandlerFunc {
	limit := g.config.Auth.RateLimit
	window := g.config.Auth.RateLimitSpan
	return func(c *gin.Context) {
		if g.deps.Limiter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + c.FullPath() + ":" + c.ClientIP()
		count, err := g.deps.Limiter.Hit(c.Request.Context(), key, window)
		if err != nil {
			g.logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count > limit {
			abortError(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}
