package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/beatstoch-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetTempoSystemPrompt loads the system prompt of the tempo lookup
func (l *Loader) GetTempoSystemPrompt() string {
	return strings.TrimSpace(string(embedded.TempoSystemPromptTxt))
}
