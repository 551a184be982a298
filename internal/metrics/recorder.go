package metrics

import (
	"context"
	"time"
)

// Recorder receives service metrics. Counters, SentryMetrics and Client implement it.
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	RecordGeneration(ctx context.Context, style string, eventCount int, duration time.Duration, success bool)
	RecordTempoLookup(ctx context.Context, found bool, duration time.Duration)
}

// Multi fans a record out to several recorders
type Multi []Recorder

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
}

func (m Multi) RecordGeneration(ctx context.Context, style string, eventCount int, duration time.Duration, success bool) {
	for _, r := range m {
		r.RecordGeneration(ctx, style, eventCount, duration, success)
	}
}

func (m Multi) RecordTempoLookup(ctx context.Context, found bool, duration time.Duration) {
	for _, r := range m {
		r.RecordTempoLookup(ctx, found, duration)
	}
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordAPIRequest(context.Context, string, int, time.Duration)       {}
func (Nop) RecordGeneration(context.Context, string, int, time.Duration, bool) {}
func (Nop) RecordTempoLookup(context.Context, bool, time.Duration)             {}
