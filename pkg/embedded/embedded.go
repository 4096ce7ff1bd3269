package embedded

import (
	_ "embed"
)

// Embed prompt data files
//
//go:embed data/prompts/loop_prompt.txt
var LoopPromptTxt []byte
