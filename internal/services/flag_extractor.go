package services

import (
	"strings"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
)

// flagQuote delimits a flag in the generated text: 'Melody'
const flagQuote = '\''

// ExtractFlags returns every single-quoted span in text, in order of occurrence.
// Duplicates are kept; deduplication against history is the reconciler's job.
// Extraction is purely lexical: no nesting, no escapes. Blank spans ('' or '  ')
// carry no segment name and are skipped.
func ExtractFlags(text string) []models.Flag {
	var flags []models.Flag

	rest := text
	for {
		open := strings.IndexByte(rest, flagQuote)
		if open < 0 {
			break
		}
		rest = rest[open+1:]

		closing := strings.IndexByte(rest, flagQuote)
		if closing < 0 {
			// Unterminated quote: the generator is probably still writing it
			break
		}

		name := rest[:closing]
		rest = rest[closing+1:]

		if strings.TrimSpace(name) == "" {
			continue
		}
		flags = append(flags, models.Flag(name))
	}

	return flags
}
