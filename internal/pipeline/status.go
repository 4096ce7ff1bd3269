package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Status is a read-only view of the driver's state, published after every tick
type Status struct {
	Artifact    string    `json:"artifact"`
	Tempo       int       `json:"tempo"`
	Committed   []string  `json:"committed"`
	Pending     []string  `json:"pending,omitempty"`
	RetryQueued bool      `json:"retryQueued"`
	LastOutcome Outcome   `json:"lastOutcome"`
	LastCycleID string    `json:"lastCycleId,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	LastCycleAt time.Time `json:"lastCycleAt"`
	Cycles      int       `json:"cycles"`
	Commits     int       `json:"commits"`
	Rollbacks   int       `json:"rollbacks"`
}

// StatusBoard holds the latest Status. The driver is the only writer; readers
// (the status server) get copies.
type StatusBoard struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusBoard creates an empty board
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Publish replaces the current status
func (b *StatusBoard) Publish(status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Snapshot returns a copy of the current status
func (b *StatusBoard) Snapshot() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.status
	s.Committed = slices.Clone(s.Committed)
	s.Pending = slices.Clone(s.Pending)
	return s
}
