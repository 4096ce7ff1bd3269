package reconcile

import (
	"slices"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// Batch is the set of flags a cycle tries to materialize
type Batch struct {
	Flags []models.Flag `json:"flags"`
	// BaseIndex is the track index of the batch's first segment
	BaseIndex int `json:"baseIndex"`
	// Replay is set when the batch re-sends already committed flags
	// (first poll or forced replay); replays never change the committed set
	Replay bool `json:"replay"`
}

// Size returns the number of flags in the batch
func (b Batch) Size() int {
	return len(b.Flags)
}

// Options tune how a batch is planned
type Options struct {
	// ReplayOnEmpty re-sends the whole flag list whenever the artifact changed but
	// carried no new flags. Off by default: a committed flag is then never re-emitted.
	ReplayOnEmpty bool
}

// Context is the reconciliation state threaded through every poll cycle.
// It is a value: operations return a new Context and never mutate the receiver's
// slices, so a failed cycle can always fall back to the Context it started from.
type Context struct {
	committed []models.Flag
	pending   *Batch
	isFirst   bool
}

// NewContext returns the state at process start: nothing committed, first poll pending
func NewContext() Context {
	return Context{isFirst: true}
}

// Committed returns a copy of the committed flags in commit order
func (c Context) Committed() []models.Flag {
	return slices.Clone(c.committed)
}

// IsCommitted reports whether flag has been materialized downstream
func (c Context) IsCommitted(flag models.Flag) bool {
	return slices.Contains(c.committed, flag)
}

// Pending returns the batch that failed last cycle, if any
func (c Context) Pending() (Batch, bool) {
	if c.pending == nil {
		return Batch{}, false
	}
	return *c.pending, true
}

// HasError reports whether the previous cycle ended in a rollback
func (c Context) HasError() bool {
	return c.pending != nil
}

// IsFirst reports whether no cycle has completed yet
func (c Context) IsFirst() bool {
	return c.isFirst
}

// Plan computes the candidate batch for this cycle from the flags currently in
// the artifact. It returns false when there is nothing to do.
//
// After a failed cycle the same batch is retried unchanged, so a segment the
// generator was still writing gets another chance once the text settles. The
// pending batch is only dropped when none of its flags are left in the artifact
// (a new generation replaced the file).
func (c Context) Plan(flagsNow []models.Flag, opts Options) (Batch, bool) {
	if c.pending != nil && !superseded(*c.pending, flagsNow) {
		return cloneBatch(*c.pending), true
	}

	distinct := Distinct(flagsNow)

	fresh := make([]models.Flag, 0, len(distinct))
	for _, flag := range distinct {
		if !c.IsCommitted(flag) {
			fresh = append(fresh, flag)
		}
	}

	if len(fresh) > 0 {
		return Batch{Flags: fresh, BaseIndex: len(c.committed)}, true
	}

	if len(distinct) > 0 && (c.isFirst || opts.ReplayOnEmpty) {
		return Batch{Flags: distinct, BaseIndex: 0, Replay: true}, true
	}

	return Batch{}, false
}

// Begin speculatively appends the batch to the committed flags. Replays leave the
// committed set as it is.
func (c Context) Begin(batch Batch) Context {
	next := c.withCommitted(slices.Clone(c.committed))
	if batch.Replay {
		return next
	}
	for _, flag := range batch.Flags {
		if !slices.Contains(next.committed, flag) {
			next.committed = append(next.committed, flag)
		}
	}
	return next
}

// Commit finalizes the current cycle: the speculative flags stay, the error is cleared
func (c Context) Commit() Context {
	next := c.withCommitted(slices.Clone(c.committed))
	next.pending = nil
	next.isFirst = false
	return next
}

// Observed marks the first poll as done; used when a cycle read the artifact but
// Plan found nothing to do. Plan only returns false for a pending batch once it
// is superseded, so the pending batch is dropped here too.
func (c Context) Observed() Context {
	next := c.withCommitted(slices.Clone(c.committed))
	next.pending = nil
	next.isFirst = false
	return next
}

// Rollback removes every flag introduced by batch and marks the batch pending, so
// the next cycle retries it regardless of the artifact's modification time.
// A non-replay batch only ever holds flags that were uncommitted when it was
// planned, so removing them restores the pre-cycle committed set exactly. A replay
// added nothing and removes nothing.
func (c Context) Rollback(batch Batch) Context {
	kept := slices.Clone(c.committed)
	if !batch.Replay {
		kept = slices.DeleteFunc(kept, func(flag models.Flag) bool {
			return slices.Contains(batch.Flags, flag)
		})
	}

	next := c.withCommitted(kept)
	pending := cloneBatch(batch)
	next.pending = &pending
	next.isFirst = false
	return next
}

// Distinct removes duplicate flags, keeping first-appearance order
func Distinct(flags []models.Flag) []models.Flag {
	seen := make(map[models.Flag]struct{}, len(flags))
	out := make([]models.Flag, 0, len(flags))
	for _, flag := range flags {
		if _, ok := seen[flag]; ok {
			continue
		}
		seen[flag] = struct{}{}
		out = append(out, flag)
	}
	return out
}

func (c Context) withCommitted(committed []models.Flag) Context {
	return Context{
		committed: committed,
		pending:   c.pending,
		isFirst:   c.isFirst,
	}
}

// superseded reports whether none of the pending batch's flags are still present
func superseded(pending Batch, flagsNow []models.Flag) bool {
	for _, flag := range pending.Flags {
		if slices.Contains(flagsNow, flag) {
			return false
		}
	}
	return true
}

func cloneBatch(b Batch) Batch {
	return Batch{
		Flags:     slices.Clone(b.Flags),
		BaseIndex: b.BaseIndex,
		Replay:    b.Replay,
	}
}
