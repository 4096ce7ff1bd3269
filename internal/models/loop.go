package models

// Valid MIDI pitch range for parsed note rows ([MinPitch, MaxPitch))
const (
	MinPitch = 0
	MaxPitch = 127
)

// Column order of a note table row as produced by the generator
const (
	ColumnPitch = iota
	ColumnStartTime
	ColumnDuration
	ColumnVelocity

	// SchemaWidth is the minimum number of fields a row must carry
	SchemaWidth
)

// Flag identifies one named segment ("Melody", "Drum", ...) in the generated text
type Flag string

// NoteRow is one parsed line of a segment's note table
type NoteRow struct {
	Pitch     int     `json:"pitch"`
	StartTime float64 `json:"startTime"` // beats
	Duration  float64 `json:"duration"`  // beats
	Velocity  int     `json:"velocity"`
}

// RawSegment is the slice of artifact text that belongs to one flag.
// It is recomputed from the current snapshot every cycle.
type RawSegment struct {
	Flag  Flag
	Text  string
	Found bool // false when the flag's markers could not be located
}

// Segment is a flag together with its parsed rows, in performance order
type Segment struct {
	Flag Flag      `json:"flag"`
	Rows []NoteRow `json:"rows"`
}

// ClipDescriptor is what the engine needs before any note can be inserted
type ClipDescriptor struct {
	TrackIndex int     `json:"trackIndex"`
	Length     float64 `json:"length"` // beats
}

// FlagsToStrings converts flags for logging and JSON output
func FlagsToStrings(flags []Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}
