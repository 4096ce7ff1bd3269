package middleware

import (
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/logger"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/metrics"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/pipeline"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sentryFlushTimeout = 2 * time.Second

	// HeaderRequestID carries the id assigned to each status request
	HeaderRequestID = "X-Request-ID"
	// HeaderLoopCycle carries the id of the last poll cycle that did work
	HeaderLoopCycle = "X-Loop-Cycle"
)

var sentryMetrics = metrics.NewSentryMetrics()

// RequestTracking assigns a request id, stamps the response with the loop's
// last cycle id and logs the request with the loop state it was served from
func RequestTracking(board *pipeline.StatusBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		status := board.Snapshot()

		c.Set("request_id", requestID)
		c.Set("cycle_id", status.LastCycleID)
		c.Header(HeaderRequestID, requestID)
		if status.LastCycleID != "" {
			c.Header(HeaderLoopCycle, status.LastCycleID)
		}
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("cycle_id", status.LastCycleID)
			hub.Scope().SetTag("last_outcome", string(status.LastOutcome))
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := logger.WithCycle(status.LastCycleID, status.Artifact).Merge(logger.Fields{
			"request_id":   requestID,
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"status_code":  c.Writer.Status(),
			"duration_ms":  duration.Milliseconds(),
			"retry_queued": status.RetryQueued,
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Status request failed", fields)
		} else {
			logger.Debug("Status request served", fields)
		}

		sentryMetrics.RecordAPIRequest(c.Request.Context(), c.Request.URL.Path, c.Writer.Status(), duration)
	}
}

// SentryMiddleware returns the Sentry middleware with custom configuration
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry recovers from panics in a handler, reports them with the
// request and cycle ids, and answers 500
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			requestID := c.GetString("request_id")
			cycleID := c.GetString("cycle_id")
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetRequest(c.Request)
					scope.SetTag("cycle_id", cycleID)
					scope.SetContext("request", map[string]interface{}{
						"request_id": requestID,
						"path":       c.Request.URL.Path,
					})
					hub.RecoverWithContext(c.Request.Context(), recovered)
				})
			}

			logger.Warn("Panic recovered in status server", logger.Fields{
				"request_id": requestID,
				"cycle_id":   cycleID,
				"path":       c.Request.URL.Path,
				"error":      recovered,
			})
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}()
		c.Next()
	}
}
