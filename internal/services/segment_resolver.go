package services

import (
	"strings"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// markerSuffix follows a flag name where its note table starts: "Melody: 60 0 0.5 100"
const markerSuffix = ":"

// ResolveSegments locates the text span of every flag in batch, in batch order.
// It always returns exactly one RawSegment per flag; a segment whose markers are
// missing comes back with Found=false and empty text.
//
// Boundaries use the LAST occurrence of "<flag>:" so that a preamble echoing the
// flag names ("I will write Melody: and Drum: sections") is skipped. Whether the
// first occurrence would be more robust against generators that restate names
// mid-output is an open question; keep last-occurrence until that is settled.
func ResolveSegments(text string, batch []models.Flag) []models.RawSegment {
	segments := make([]models.RawSegment, 0, len(batch))

	for i, flag := range batch {
		if i < len(batch)-1 {
			segments = append(segments, segmentBetween(text, flag, batch[i+1]))
			continue
		}
		segments = append(segments, trailingSegment(text, flag))
	}

	return segments
}

// segmentBetween returns the text strictly between the last "<flag>:" and the
// last "<next>:" that follows it
func segmentBetween(text string, flag, next models.Flag) models.RawSegment {
	marker := string(flag) + markerSuffix
	idx := strings.LastIndex(text, marker)
	if idx < 0 {
		return models.RawSegment{Flag: flag}
	}
	start := idx + len(marker)

	end := strings.LastIndex(text[start:], string(next)+markerSuffix)
	if end < 0 {
		return models.RawSegment{Flag: flag}
	}

	return models.RawSegment{
		Flag:  flag,
		Text:  text[start : start+end],
		Found: true,
	}
}

// trailingSegment handles the last flag of a batch, which runs to end of text.
// Without a "<flag>:" marker it falls back to whatever follows the first bare
// occurrence of the flag name.
func trailingSegment(text string, flag models.Flag) models.RawSegment {
	marker := string(flag) + markerSuffix
	if idx := strings.LastIndex(text, marker); idx >= 0 {
		return models.RawSegment{
			Flag:  flag,
			Text:  text[idx+len(marker):],
			Found: true,
		}
	}

	if _, after, ok := strings.Cut(text, string(flag)); ok {
		return models.RawSegment{
			Flag:  flag,
			Text:  after,
			Found: true,
		}
	}

	return models.RawSegment{Flag: flag}
}
