package services

import (
	"math"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// durationPrecision is the rounding applied to clip lengths (4 decimals)
const durationPrecision = 1e4

// PatternDuration returns the clip length for a segment: the first row's start
// time plus the sum of every row's duration, rounded to 4 decimals.
// It reports false for an empty segment.
func PatternDuration(rows []models.NoteRow) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}

	total := rows[0].StartTime
	for _, row := range rows {
		total += row.Duration
	}

	return math.Round(total*durationPrecision) / durationPrecision, true
}

// NotePointers returns the start position of every note as it will be placed in
// the clip. Rows are laid end to end starting at the first row's start time; the
// per-row start times after the first are not used.
func NotePointers(rows []models.NoteRow) []float64 {
	if len(rows) == 0 {
		return nil
	}

	pointers := make([]float64, len(rows))
	pointer := rows[0].StartTime
	for i, row := range rows {
		pointers[i] = pointer
		pointer += row.Duration
	}

	return pointers
}

// ClipFor derives the clip descriptor for a segment placed on trackIndex
func ClipFor(trackIndex int, segment models.Segment) (models.ClipDescriptor, bool) {
	length, ok := PatternDuration(segment.Rows)
	if !ok {
		return models.ClipDescriptor{}, false
	}
	return models.ClipDescriptor{TrackIndex: trackIndex, Length: length}, true
}
