package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/Conceptual-Machines/magda-loop-bridge/pkg/embedded"
)

type Loader struct {
	overridePath string
}

// NewPromptLoader creates a loader; overridePath, when set, replaces the embedded template
func NewPromptLoader(overridePath string) *Loader {
	return &Loader{overridePath: overridePath}
}

// GetLoopPromptTemplate loads the loop prompt template
func (l *Loader) GetLoopPromptTemplate() (string, error) {
	if l.overridePath == "" {
		return strings.TrimSpace(string(embedded.LoopPromptTxt)), nil
	}

	data, err := os.ReadFile(l.overridePath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
