package services

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// TableResult is the outcome of parsing one segment's note table
type TableResult struct {
	Rows []models.NoteRow
	// Candidates counts lines that looked like data (first token is an integer),
	// whether or not they survived validation
	Candidates int
}

// ParseTable converts a segment's raw text into note rows.
// Lines that do not start with a valid pitch are treated as prose or headers and
// ignored; data lines with fewer than four fields or non-numeric fields are dropped.
// Rows are returned in text order, nothing is reordered.
func ParseTable(raw string) TableResult {
	var result TableResult

	for _, line := range strings.Split(raw, "\n") {
		fields := splitRow(line)
		if len(fields) == 0 {
			continue
		}

		pitch, err := strconv.Atoi(fields[models.ColumnPitch])
		if err != nil {
			continue
		}
		result.Candidates++

		if !validPitchToken(fields[models.ColumnPitch], pitch) {
			continue
		}
		if len(fields) < models.SchemaWidth {
			continue
		}

		row, ok := parseRow(pitch, fields)
		if !ok {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

// splitRow splits a table line on tabs and spaces, dropping empty fields
func splitRow(line string) []string {
	line = strings.TrimRight(line, "\r")
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
}

// validPitchToken requires the canonical decimal form ("60", not "060" or "+60")
// of a pitch inside the MIDI range
func validPitchToken(token string, pitch int) bool {
	if pitch < models.MinPitch || pitch >= models.MaxPitch {
		return false
	}
	return strconv.Itoa(pitch) == token
}

func parseRow(pitch int, fields []string) (models.NoteRow, bool) {
	start, err := strconv.ParseFloat(fields[models.ColumnStartTime], 64)
	if err != nil {
		return models.NoteRow{}, false
	}

	duration, err := strconv.ParseFloat(fields[models.ColumnDuration], 64)
	if err != nil {
		return models.NoteRow{}, false
	}

	// The generator sometimes closes a quoted row right after the velocity: 110'
	velocityField := strings.ReplaceAll(fields[models.ColumnVelocity], "'", "")
	velocity, err := strconv.Atoi(velocityField)
	if err != nil {
		return models.NoteRow{}, false
	}

	return models.NoteRow{
		Pitch:     pitch,
		StartTime: start,
		Duration:  duration,
		Velocity:  velocity,
	}, true
}
