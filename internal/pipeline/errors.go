package pipeline

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// Failure kinds. All of them are recoverable: the batch is rolled back and
// retried on the next tick.
var (
	// ErrIncompleteGeneration means a flag's body has not been written (yet)
	ErrIncompleteGeneration = errors.New("incomplete generation")
	// ErrMalformedSegmentCount means fewer segments could be bounded than the batch holds
	ErrMalformedSegmentCount = errors.New("malformed segment count")
	// ErrStructuralParse means data rows are present but none match the note schema
	ErrStructuralParse = errors.New("structural parse failure")
	// ErrTransport means a command could not be handed to the engine transport
	ErrTransport = errors.New("transport failure")
)

// GateError reports which flag failed which validation gate
type GateError struct {
	Kind  error
	Flag  models.Flag
	Cause error
}

func (e *GateError) Error() string {
	msg := fmt.Sprintf("%v: flag %q", e.Kind, e.Flag)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As
func (e *GateError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// KindName returns a short, metric-friendly name for a failure
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteGeneration):
		return "incomplete_generation"
	case errors.Is(err, ErrMalformedSegmentCount):
		return "malformed_segment_count"
	case errors.Is(err, ErrStructuralParse):
		return "structural_parse"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

func gateError(kind error, flag models.Flag) *GateError {
	return &GateError{Kind: kind, Flag: flag}
}
