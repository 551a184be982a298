package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records metrics as Sentry spans on the request transaction
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // no-op spans when Sentry is not initialised
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("status_code", statusCode)

	span.Status = spanStatus(statusCode < successStatusCodeThreshold)
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration records one pattern generation
func (m *SentryMetrics) RecordGeneration(ctx context.Context, style string, eventCount int, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("pattern.style", style)
		transaction.SetData("pattern.events", eventCount)
	}

	span := sentry.StartSpan(ctx, "pattern.generation")
	defer span.Finish()

	span.SetTag("style", style)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("events", eventCount)

	span.Status = spanStatus(success)
	span.Description = fmt.Sprintf("Generate: %s", style)
}

// RecordTempoLookup records a song tempo lookup
func (m *SentryMetrics) RecordTempoLookup(ctx context.Context, found bool, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "tempo.lookup")
	defer span.Finish()

	span.SetTag("found", fmt.Sprintf("%t", found))
	span.SetData("duration_ms", duration.Milliseconds())
	span.Status = spanStatus(found)
}

func spanStatus(ok bool) sentry.SpanStatus {
	if ok {
		return sentry.SpanStatusOK
	}
	return sentry.SpanStatusInternalError
}
