package logger

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obscontext "github.com/sahelsolar/fieldops/internal/observability/context"
)

// MiddlewareConfig tunes the request logging middleware.
type MiddlewareConfig struct {
	// SkipPaths lists exact paths that should not be logged (health checks).
	SkipPaths []string
}

// GinMiddleware assigns every request an ID, exposes it via header and
// context, and logs a request summary on completion.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-Id", requestID)

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		if _, ok := skip[c.FullPath()]; ok {
			return
		}

		FromContext(ctx).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Any("headers", MaskHeaders(c.Request.Header)),
		)
	}
}

func newRequestID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf[:])
}
