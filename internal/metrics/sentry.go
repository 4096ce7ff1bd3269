package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

const httpStatusServerError = 500

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordCycle records one processed poll cycle as a span
func (m *SentryMetrics) RecordCycle(ctx context.Context, outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "loop.cycle")
	defer span.Finish()

	span.SetTag("outcome", outcome)
	span.SetData("duration_ms", duration.Milliseconds())

	if outcome == OutcomeRolledBack {
		span.Status = sentry.SpanStatusAborted
	} else {
		span.Status = sentry.SpanStatusOK
	}

	span.Description = fmt.Sprintf("Poll Cycle: %s", outcome)
}

// RecordCommit records a committed batch
func (m *SentryMetrics) RecordCommit(ctx context.Context, segments, notes int) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "loop.commit")
	defer span.Finish()

	span.SetTag("segments", fmt.Sprintf("%d", segments))
	span.SetData("segments", segments)
	span.SetData("notes", notes)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Committed %d segments (%d notes)", segments, notes)
}

// RecordRollback records a failed batch
func (m *SentryMetrics) RecordRollback(ctx context.Context, kind, flag string) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "loop.rollback")
	defer span.Finish()

	span.SetTag("kind", kind)
	span.SetTag("flag", flag)
	span.SetData("kind", kind)
	span.SetData("flag", flag)

	span.Status = sentry.SpanStatusAborted
	span.Description = fmt.Sprintf("Rollback: %s (%s)", kind, flag)
}

// RecordGenerationDuration records how long a generate run streamed
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation Request: %t", success)
}

// RecordAPIRequest records a status server request
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "http.server")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode >= httpStatusServerError {
		span.Status = sentry.SpanStatusInternalError
	} else {
		span.Status = sentry.SpanStatusOK
	}

	span.Description = fmt.Sprintf("GET %s", endpoint)
}
