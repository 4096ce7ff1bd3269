package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Template placeholders, substituted in this order
const (
	placeholderFirst        = "first-hand"
	placeholderCount        = "x-hand-len"
	placeholderOthers       = "other_hand"
	placeholderOthersAnd    = "other-hand-and"
	placeholderLoopHand     = "loop_hand"
	placeholderLoopHandLine = "loop-hand-line"

	// exampleRow shows the generator what a note line looks like
	exampleRow = "60 0.125 0.225 110 …"
)

// Builder builds the generation prompt for a set of loop names
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder(loader *Loader) *Builder {
	if loader == nil {
		loader = NewPromptLoader("")
	}
	return &Builder{loader: loader}
}

// BuildPrompt loads the template and fills it for flags
func (b *Builder) BuildPrompt(flags []string) (string, error) {
	template, err := b.loader.GetLoopPromptTemplate()
	if err != nil {
		return "", err
	}
	return FillTemplate(template, flags)
}

// FillTemplate substitutes the loop placeholders in template.
// The first flag names the lead part; the rest are listed as accompanying parts.
func FillTemplate(template string, flags []string) (string, error) {
	if len(flags) == 0 {
		return "", fmt.Errorf("at least one loop name is required")
	}

	var others, othersAnd, loopHand, loopHandLine strings.Builder
	for i, flag := range flags {
		if i > 0 {
			others.WriteString(" ‘" + flag + "’ ")
			othersAnd.WriteString(" and ‘" + flag + "’")
		}
		loopHand.WriteString(" ‘" + flag + ": " + exampleRow + "’ ")
		loopHandLine.WriteString("‘" + flag + ": " + exampleRow + "’\n")
	}

	prompt := strings.ReplaceAll(template, placeholderFirst, flags[0])
	prompt = strings.ReplaceAll(prompt, placeholderCount, strconv.Itoa(len(flags)))
	prompt = strings.ReplaceAll(prompt, placeholderOthers, others.String())
	prompt = strings.ReplaceAll(prompt, placeholderOthersAnd, othersAnd.String())
	prompt = strings.ReplaceAll(prompt, placeholderLoopHand, loopHand.String())
	prompt = strings.ReplaceAll(prompt, placeholderLoopHandLine, loopHandLine.String())
	return prompt, nil
}
