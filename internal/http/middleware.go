package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/http/handlers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags each request with an ID and a logger carrying it, and
// writes one access log line when the request completes.
func requestContext(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = "req_" + uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		reqLog := log.With("request_id", id)
		handlers.SetRequestLogger(c, reqLog)

		start := time.Now()
		c.Next()

		reqLog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// bodyLimit caps the request body at n bytes. Reads past the cap fail with
// *http.MaxBytesError.
func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
