package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"
	"mercafacil/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderServiceKey carries the shared secret for service-to-service calls
	// (order subsystem, payment-confirmation webhook).
	HeaderServiceKey = "X-Service-Key"

	// Context keys
	CtxOwnerType = "owner_type"
	CtxOwnerID   = "owner_id"
)

// ServiceKeyAuth creates a middleware that authenticates internal
// collaborators via a shared service key.
func ServiceKeyAuth(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderServiceKey)
		if serviceKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			response.Error(c, apperror.ErrInvalidServiceKey())
			c.Abort()
			return
		}
		c.Next()
	}
}

// JWTAuth creates a middleware that validates dashboard tokens and resolves
// the wallet owner once at the boundary. Handlers downstream read the typed
// owner from context instead of re-deriving roles.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxOwnerType, claims.OwnerType)
		c.Set(CtxOwnerID, claims.OwnerID)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize limits request body size to n bytes.
func MaxBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
