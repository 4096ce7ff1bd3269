package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/logger"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/metrics"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/osc"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/reconcile"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/services"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/source"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// Outcome is the result of one poll tick
type Outcome string

const (
	// OutcomeUnchanged: artifact not modified and no retry pending; no work done
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNoNewFlags: artifact read but every flag is already committed
	OutcomeNoNewFlags Outcome = "no_new_flags"
	// OutcomeCommitted: a batch passed every gate and was sent to the engine
	OutcomeCommitted Outcome = metrics.OutcomeCommitted
	// OutcomeRolledBack: a batch failed a gate; it is retried next tick
	OutcomeRolledBack Outcome = metrics.OutcomeRolledBack
	// OutcomeSourceUnavailable: the artifact could not be stat'ed or read
	OutcomeSourceUnavailable Outcome = "source_unavailable"
)

// maxPreviewChars bounds segment text quoted in debug logs
const maxPreviewChars = 80

// Settings configures a Driver
type Settings struct {
	Reconcile reconcile.Options
	Scheduler Scheduler
	Tempo     int
}

// Report describes what one tick did
type Report struct {
	Outcome  Outcome
	CycleID  string
	Batch    reconcile.Batch
	Emitted  osc.EmitResult
	Err      error
	Duration time.Duration
}

// Driver runs the poll loop: read the artifact, plan a batch of new flags,
// validate and parse their segments, emit them, then commit or roll back.
// It is single-threaded; the reconciliation Context is threaded through Poll
// rather than stored, and only published to the StatusBoard as a copy.
type Driver struct {
	source   source.Source
	emitter  *osc.Emitter
	recorder metrics.Recorder
	settings Settings
	board    *StatusBoard

	lastModTime time.Time
	counters    Status
}

// NewDriver wires a driver. recorder and board may be nil.
func NewDriver(src source.Source, emitter *osc.Emitter, recorder metrics.Recorder, board *StatusBoard, settings Settings) *Driver {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if board == nil {
		board = NewStatusBoard()
	}
	settings.Scheduler = NewScheduler(settings.Scheduler.Interval, settings.Scheduler.RetryInterval)
	return &Driver{
		source:   src,
		emitter:  emitter,
		recorder: recorder,
		settings: settings,
		board:    board,
	}
}

// Run pushes the tempo once, then polls until ctx is cancelled.
// It returns nil on cancellation; the loop has no other exit.
func (d *Driver) Run(ctx context.Context) error {
	if d.settings.Tempo > 0 {
		if err := d.emitter.SetTempo(ctx, d.settings.Tempo); err != nil {
			logger.Error("Failed to set tempo", err, logger.Fields{"bpm": d.settings.Tempo})
		}
	}

	log.Printf("👀 Watching %s (interval: %v, retry interval: %v)",
		d.source.Name(), d.settings.Scheduler.Interval, d.settings.Scheduler.RetryInterval)

	rctx := reconcile.NewContext()
	for {
		var report Report
		rctx, report = d.Poll(ctx, rctx)
		d.publish(rctx, report)

		wait := d.settings.Scheduler.Next(rctx.HasError())
		if err := d.settings.Scheduler.Wait(ctx, wait); err != nil {
			log.Printf("🛑 Poll loop stopped: %v", err)
			return nil
		}
	}
}

// Poll runs one tick against rctx and returns the next Context.
// If the artifact is unchanged since the last read and nothing is pending, it
// does no work and returns rctx as is.
func (d *Driver) Poll(ctx context.Context, rctx reconcile.Context) (reconcile.Context, Report) {
	modTime, err := d.source.ModTime(ctx)
	if err != nil {
		return rctx, d.sourceUnavailable(err)
	}

	if !rctx.IsFirst() && !rctx.HasError() && modTime.Equal(d.lastModTime) {
		return rctx, Report{Outcome: OutcomeUnchanged}
	}

	snapshot, err := d.source.Read(ctx)
	if err != nil {
		return rctx, d.sourceUnavailable(err)
	}
	d.lastModTime = snapshot.ModTime

	return d.process(ctx, rctx, snapshot.Text)
}

// process runs the gates for one snapshot of the artifact
func (d *Driver) process(ctx context.Context, rctx reconcile.Context, text string) (reconcile.Context, Report) {
	start := time.Now()
	flags := services.ExtractFlags(text)

	batch, ok := rctx.Plan(flags, d.settings.Reconcile)
	if !ok {
		return rctx.Observed(), Report{Outcome: OutcomeNoNewFlags}
	}

	report := Report{CycleID: uuid.New().String(), Batch: batch}
	fields := logger.WithCycle(report.CycleID, d.source.Name()).Merge(logger.Fields{
		"batch":      models.FlagsToStrings(batch.Flags),
		"base_index": batch.BaseIndex,
		"replay":     batch.Replay,
		"retry":      rctx.HasError(),
	})

	span := sentry.StartSpan(ctx, "loop.process")
	span.SetTag("cycle_id", report.CycleID)
	defer span.Finish()
	ctx = span.Context()

	speculative := rctx.Begin(batch)

	segments, gateErr := d.validate(text, batch, fields)
	if gateErr == nil {
		report.Emitted, gateErr = d.emit(ctx, batch, segments)
	}
	report.Duration = time.Since(start)

	if gateErr != nil {
		report.Outcome = OutcomeRolledBack
		report.Err = gateErr
		d.recorder.RecordRollback(ctx, KindName(gateErr), string(gateErr.Flag))
		d.recorder.RecordCycle(ctx, string(report.Outcome), report.Duration)

		logger.Warn("Batch rolled back, retrying next tick", fields.Merge(logger.Fields{
			"flag":  string(gateErr.Flag),
			"kind":  KindName(gateErr),
			"error": gateErr.Error(),
		}))
		return speculative.Rollback(batch), report
	}

	report.Outcome = OutcomeCommitted
	d.recorder.RecordCommit(ctx, len(segments), report.Emitted.Notes)
	d.recorder.RecordCycle(ctx, string(report.Outcome), report.Duration)

	log.Printf("✅ Loop clips sent: %s", strings.Join(models.FlagsToStrings(batch.Flags), ";"))
	logger.LogCycle(ctx, string(report.Outcome), report.Duration, fields.Merge(logger.Fields{
		"notes":    report.Emitted.Notes,
		"commands": report.Emitted.Commands,
	}))
	return speculative.Commit(), report
}

// validate applies the completeness, segment-count and non-empty gates and
// returns the parsed segments in batch order
func (d *Driver) validate(text string, batch reconcile.Batch, fields logger.Fields) ([]models.Segment, *GateError) {
	// Completeness: a flag that is no longer in the text cannot have a body
	for _, flag := range batch.Flags {
		if !strings.Contains(text, string(flag)) {
			return nil, gateError(ErrIncompleteGeneration, flag)
		}
	}

	raw := services.ResolveSegments(text, batch.Flags)
	bounded := 0
	var firstMissing models.Flag
	for _, seg := range raw {
		if seg.Found {
			bounded++
		} else if firstMissing == "" {
			firstMissing = seg.Flag
		}
	}
	if len(raw) != batch.Size() || bounded != batch.Size() {
		return nil, gateError(ErrMalformedSegmentCount, firstMissing)
	}

	segments := make([]models.Segment, 0, len(raw))
	for _, seg := range raw {
		if strings.TrimSpace(seg.Text) == "" {
			return nil, gateError(ErrIncompleteGeneration, seg.Flag)
		}

		table := services.ParseTable(seg.Text)
		if len(table.Rows) == 0 {
			logger.Debug("Segment has no note rows", fields.Merge(logger.Fields{
				"flag":       string(seg.Flag),
				"candidates": table.Candidates,
				"preview":    preview(seg.Text),
			}))
			if table.Candidates > 0 {
				return nil, gateError(ErrStructuralParse, seg.Flag)
			}
			return nil, gateError(ErrIncompleteGeneration, seg.Flag)
		}

		segments = append(segments, models.Segment{Flag: seg.Flag, Rows: table.Rows})
	}

	return segments, nil
}

func (d *Driver) emit(ctx context.Context, batch reconcile.Batch, segments []models.Segment) (osc.EmitResult, *GateError) {
	result, err := d.emitter.EmitBatch(ctx, batch.BaseIndex, segments)
	if err == nil {
		return result, nil
	}

	// The segment that failed is the one after the last completed clip
	failed := batch.Flags[0]
	if n := len(result.Clips); n < len(batch.Flags) {
		failed = batch.Flags[n]
	}
	return result, &GateError{Kind: ErrTransport, Flag: failed, Cause: err}
}

func (d *Driver) sourceUnavailable(err error) Report {
	if errors.Is(err, source.ErrNotFound) {
		logger.Debug("Artifact not there yet", logger.Fields{"artifact": d.source.Name()})
	} else if !errors.Is(err, context.Canceled) {
		logger.Warn("Artifact unreadable", logger.Fields{
			"artifact": d.source.Name(),
			"error":    err.Error(),
		})
	}
	return Report{Outcome: OutcomeSourceUnavailable, Err: err}
}

// publish pushes a copy of the driver state to the status board
func (d *Driver) publish(rctx reconcile.Context, report Report) {
	if report.Outcome != OutcomeUnchanged {
		d.counters.Cycles++
	}
	if report.CycleID != "" {
		d.counters.LastCycleID = report.CycleID
	}
	switch report.Outcome {
	case OutcomeCommitted:
		d.counters.Commits++
	case OutcomeRolledBack:
		d.counters.Rollbacks++
	}

	status := Status{
		Artifact:    d.source.Name(),
		Tempo:       d.settings.Tempo,
		Committed:   models.FlagsToStrings(rctx.Committed()),
		RetryQueued: rctx.HasError(),
		LastOutcome: report.Outcome,
		LastCycleID: d.counters.LastCycleID,
		LastCycleAt: time.Now(),
		Cycles:      d.counters.Cycles,
		Commits:     d.counters.Commits,
		Rollbacks:   d.counters.Rollbacks,
	}
	if pending, ok := rctx.Pending(); ok {
		status.Pending = models.FlagsToStrings(pending.Flags)
	}
	if report.Err != nil {
		status.LastError = report.Err.Error()
	}
	d.board.Publish(status)
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxPreviewChars {
		return fmt.Sprintf("%s...", s[:maxPreviewChars])
	}
	return s
}
