package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/tempo_system_prompt.txt
var TempoSystemPromptTxt []byte
