// Package handler provides the HTTP command surface of the AI router.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nativex/ai-router/internal/ui"
)

// CORSMiddleware returns a middleware that enables permissive CORS.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// LoggingMiddleware returns a middleware that logs request details in JSON format,
// including which provider served the command and how it ended.
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}
		if outcome := c.GetString(ctxOutcome); outcome != "" {
			attrs = append(attrs,
				slog.String("provider", c.GetString(ctxProvider)),
				slog.String("model", c.GetString(ctxModel)),
				slog.String("outcome", outcome),
				slog.String("deferred", c.GetString(ctxDeferred)),
			)
		}

		logger.Info("request completed", attrs...)
	}
}

// ConsoleMiddleware prints a colorized status line per request.
func ConsoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ui.PrintRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString(ctxProvider))
		if outcome := c.GetString(ctxOutcome); outcome != "" {
			ui.PrintOutcome(outcome, c.GetString(ctxProvider), c.GetString(ctxModel))
		}
	}
}

// RecoveryMiddleware returns a middleware that recovers from panics.
// It logs the error and returns a 500 response in the router's error format.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"message": "Internal server error",
						"type":    "server_error",
					},
				})
			}
		}()

		c.Next()
	}
}
