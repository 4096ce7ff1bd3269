package reconcile

import (
	"testing"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(names ...string) []models.Flag {
	out := make([]models.Flag, len(names))
	for i, n := range names {
		out[i] = models.Flag(n)
	}
	return out
}

// committed returns a Context with names committed and the first poll done
func committed(names ...string) Context {
	c := NewContext()
	batch, ok := c.Plan(flags(names...), Options{})
	if !ok {
		return c.Observed()
	}
	return c.Begin(batch).Commit()
}

func TestNewContext(t *testing.T) {
	c := NewContext()
	assert.True(t, c.IsFirst())
	assert.False(t, c.HasError())
	assert.Empty(t, c.Committed())
	_, ok := c.Pending()
	assert.False(t, ok)
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		ctx       Context
		flagsNow  []models.Flag
		opts      Options
		wantOK    bool
		wantBatch Batch
	}{
		{
			name:      "first poll takes everything",
			ctx:       NewContext(),
			flagsNow:  flags("Melody", "Drum"),
			wantOK:    true,
			wantBatch: Batch{Flags: flags("Melody", "Drum"), BaseIndex: 0},
		},
		{
			name:      "duplicates collapse in first-appearance order",
			ctx:       NewContext(),
			flagsNow:  flags("Drum", "Melody", "Drum"),
			wantOK:    true,
			wantBatch: Batch{Flags: flags("Drum", "Melody"), BaseIndex: 0},
		},
		{
			name:      "diff against committed, order preserved",
			ctx:       committed("Melody"),
			flagsNow:  flags("Bass", "Melody", "Drum"),
			wantOK:    true,
			wantBatch: Batch{Flags: flags("Bass", "Drum"), BaseIndex: 1},
		},
		{
			name:     "nothing new after the first poll",
			ctx:      committed("Melody", "Drum"),
			flagsNow: flags("Melody", "Drum"),
			wantOK:   false,
		},
		{
			name:      "nothing new with replay forced",
			ctx:       committed("Melody", "Drum"),
			flagsNow:  flags("Melody", "Drum"),
			opts:      Options{ReplayOnEmpty: true},
			wantOK:    true,
			wantBatch: Batch{Flags: flags("Melody", "Drum"), BaseIndex: 0, Replay: true},
		},
		{
			name:     "no flags at all",
			ctx:      NewContext(),
			flagsNow: nil,
			opts:     Options{ReplayOnEmpty: true},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, ok := tt.ctx.Plan(tt.flagsNow, tt.opts)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantBatch, batch)
			}
		})
	}
}

func TestPlanReplayOnFirstPoll(t *testing.T) {
	// A Context whose committed set already covers the artifact but has not
	// completed a cycle replays the whole list once
	c := Context{committed: flags("Melody"), isFirst: true}

	batch, ok := c.Plan(flags("Melody"), Options{})
	require.True(t, ok)
	assert.Equal(t, Batch{Flags: flags("Melody"), BaseIndex: 0, Replay: true}, batch)
}

func TestBeginCommit(t *testing.T) {
	c := committed("Melody")
	batch, ok := c.Plan(flags("Melody", "Drum"), Options{})
	require.True(t, ok)

	speculative := c.Begin(batch)
	assert.Equal(t, flags("Melody", "Drum"), speculative.Committed())
	assert.Equal(t, flags("Melody"), c.Committed(), "Begin must not mutate the receiver")

	done := speculative.Commit()
	assert.Equal(t, flags("Melody", "Drum"), done.Committed())
	assert.False(t, done.HasError())
	assert.False(t, done.IsFirst())
}

func TestRollbackRestoresCommitted(t *testing.T) {
	before := committed("Melody")
	batch, ok := before.Plan(flags("Melody", "Drum", "Bass"), Options{})
	require.True(t, ok)

	after := before.Begin(batch).Rollback(batch)

	assert.ElementsMatch(t, before.Committed(), after.Committed())
	assert.True(t, after.HasError())
	pending, ok := after.Pending()
	require.True(t, ok)
	assert.Equal(t, batch, pending)
}

func TestRollbackOfReplayKeepsCommitted(t *testing.T) {
	before := committed("Melody", "Drum")
	batch, ok := before.Plan(flags("Melody", "Drum"), Options{ReplayOnEmpty: true})
	require.True(t, ok)
	require.True(t, batch.Replay)

	after := before.Begin(batch).Rollback(batch)
	assert.Equal(t, flags("Melody", "Drum"), after.Committed())
	assert.True(t, after.HasError())
}

func TestPendingBatchIsRetriedUnchanged(t *testing.T) {
	c := committed("Melody")
	batch, _ := c.Plan(flags("Melody", "Drum"), Options{})
	failed := c.Begin(batch).Rollback(batch)

	// New flags arrived since, but the failed batch goes first
	retry, ok := failed.Plan(flags("Melody", "Drum", "Bass"), Options{})
	require.True(t, ok)
	assert.Equal(t, batch, retry)

	done := failed.Begin(retry).Commit()
	assert.False(t, done.HasError())
	assert.Equal(t, flags("Melody", "Drum"), done.Committed())

	next, ok := done.Plan(flags("Melody", "Drum", "Bass"), Options{})
	require.True(t, ok)
	assert.Equal(t, Batch{Flags: flags("Bass"), BaseIndex: 2}, next)
}

func TestPendingBatchSupersededWhenGone(t *testing.T) {
	c := NewContext()
	batch, _ := c.Plan(flags("Bass"), Options{})
	failed := c.Begin(batch).Rollback(batch)

	next, ok := failed.Plan(flags("Lead"), Options{})
	require.True(t, ok)
	assert.Equal(t, Batch{Flags: flags("Lead"), BaseIndex: 0}, next)
}

func TestMonotonicCommit(t *testing.T) {
	c := NewContext()
	var seen []models.Flag
	steps := [][]models.Flag{
		flags("Melody"),
		flags("Melody", "Drum"),
		flags("Melody", "Drum"),
		flags("Melody", "Drum", "Bass"),
	}

	for _, now := range steps {
		batch, ok := c.Plan(now, Options{})
		if !ok {
			c = c.Observed()
			continue
		}
		for _, f := range batch.Flags {
			assert.NotContains(t, seen, f, "flag %q emitted twice", f)
		}
		c = c.Begin(batch).Commit()
		for _, f := range seen {
			assert.True(t, c.IsCommitted(f))
		}
		seen = c.Committed()
	}

	assert.Equal(t, flags("Melody", "Drum", "Bass"), c.Committed())
}

func TestObserved(t *testing.T) {
	c := NewContext().Observed()
	assert.False(t, c.IsFirst())
	assert.Empty(t, c.Committed())

	_, ok := c.Plan(nil, Options{})
	assert.False(t, ok)
}

func TestObservedDropsSupersededBatch(t *testing.T) {
	c := NewContext().Begin(Batch{Flags: flags("Melody")}).Commit()
	drum := Batch{Flags: flags("Drum"), BaseIndex: 1}
	c = c.Begin(drum).Rollback(drum)
	require.True(t, c.HasError())

	// The artifact was rewritten without Drum and holds nothing new
	_, ok := c.Plan(flags("Melody"), Options{})
	require.False(t, ok)

	c = c.Observed()
	assert.False(t, c.HasError())
	_, pending := c.Pending()
	assert.False(t, pending)
	assert.Equal(t, flags("Melody"), c.Committed())
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, flags("a", "b", "c"), Distinct(flags("a", "b", "a", "c", "b")))
	assert.Empty(t, Distinct(nil))
}
