package metrics

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

// Counters keeps process-lifetime totals for the /api/metrics endpoint
type Counters struct {
	requests          atomic.Int64
	serverErrors      atomic.Int64
	generations       atomic.Int64
	failedGenerations atomic.Int64
	events            atomic.Int64
	lookupsFound      atomic.Int64
	lookupsMissed     atomic.Int64
}

// Snapshot is a point-in-time copy of Counters
type Snapshot struct {
	Requests           int64 `json:"requests"`
	ServerErrors       int64 `json:"server_errors"`
	Generations        int64 `json:"generations"`
	FailedGenerations  int64 `json:"failed_generations"`
	GeneratedEvents    int64 `json:"generated_events"`
	TempoLookupsFound  int64 `json:"tempo_lookups_found"`
	TempoLookupsMissed int64 `json:"tempo_lookups_missed"`
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) RecordAPIRequest(_ context.Context, _ string, statusCode int, _ time.Duration) {
	c.requests.Add(1)
	if statusCode >= http.StatusInternalServerError {
		c.serverErrors.Add(1)
	}
}

func (c *Counters) RecordGeneration(_ context.Context, _ string, eventCount int, _ time.Duration, success bool) {
	if !success {
		c.failedGenerations.Add(1)
		return
	}
	c.generations.Add(1)
	c.events.Add(int64(eventCount))
}

func (c *Counters) RecordTempoLookup(_ context.Context, found bool, _ time.Duration) {
	if found {
		c.lookupsFound.Add(1)
	} else {
		c.lookupsMissed.Add(1)
	}
}

// Snapshot reads every counter; a nil receiver reads as zero
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Requests:           c.requests.Load(),
		ServerErrors:       c.serverErrors.Load(),
		Generations:        c.generations.Load(),
		FailedGenerations:  c.failedGenerations.Load(),
		GeneratedEvents:    c.events.Load(),
		TempoLookupsFound:  c.lookupsFound.Load(),
		TempoLookupsMissed: c.lookupsMissed.Load(),
	}
}
