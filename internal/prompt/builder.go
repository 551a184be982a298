package prompt

import (
	"fmt"
	"strings"
)

// Builder builds prompts for the tempo lookup
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// SystemPrompt returns the tempo lookup instructions
func (b *Builder) SystemPrompt() string {
	return b.loader.GetTempoSystemPrompt()
}

// SongPrompt builds the user message for a song
func (b *Builder) SongPrompt(title, artist string) string {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return fmt.Sprintf("Song: %q\nArtist: unknown", title)
	}
	return fmt.Sprintf("Song: %q\nArtist: %q", title, artist)
}
