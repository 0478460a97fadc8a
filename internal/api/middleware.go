package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"content-creator/internal/common/logger"
	"content-creator/internal/common/observability"
)

const requestIDHeader = "X-Request-ID"

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	})
}

// requestID propagates X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log logger.Logger, obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		obs.RecordHTTPRequest(c.Request.Context(), route, c.Request.Method, c.Writer.Status(), elapsed)
		log.Info("Request served", map[string]interface{}{
			"requestId":  c.GetString("requestID"),
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"durationMs": elapsed.Milliseconds(),
		})
	}
}

// recovery answers a panic with the standard 500 envelope.
func recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec interface{}) {
		log.Error("Handler panicked", map[string]interface{}{
			"requestId": c.GetString("requestID"),
			"panic":     fmt.Sprint(rec),
		})
		status, body := ErrorEnvelope(fmt.Sprint(rec))
		writeJSON(c, status, body)
		c.Abort()
	})
}
