package metrics

import (
	"context"
	"time"
)

// Cycle outcomes reported by the pipeline driver
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
)

// Recorder receives pipeline metrics
type Recorder interface {
	// RecordCycle is called for every cycle that read the artifact
	RecordCycle(ctx context.Context, outcome string, duration time.Duration)
	// RecordCommit is called when a batch has been materialized downstream
	RecordCommit(ctx context.Context, segments, notes int)
	// RecordRollback is called when a batch fails a validation gate
	RecordRollback(ctx context.Context, kind, flag string)
}

// Multi fans every call out to each recorder in order
type Multi []Recorder

// RecordCycle implements Recorder
func (m Multi) RecordCycle(ctx context.Context, outcome string, duration time.Duration) {
	for _, r := range m {
		r.RecordCycle(ctx, outcome, duration)
	}
}

// RecordCommit implements Recorder
func (m Multi) RecordCommit(ctx context.Context, segments, notes int) {
	for _, r := range m {
		r.RecordCommit(ctx, segments, notes)
	}
}

// RecordRollback implements Recorder
func (m Multi) RecordRollback(ctx context.Context, kind, flag string) {
	for _, r := range m {
		r.RecordRollback(ctx, kind, flag)
	}
}

// Noop discards everything
type Noop struct{}

func (Noop) RecordCycle(context.Context, string, time.Duration) {}
func (Noop) RecordCommit(context.Context, int, int)             {}
func (Noop) RecordRollback(context.Context, string, string)     {}
