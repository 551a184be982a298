package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTempoSystemPrompt(t *testing.T) {
	content := NewPromptLoader().GetTempoSystemPrompt()

	assert.NotEmpty(t, content)
	assert.Contains(t, content, "beats per minute")
	assert.Contains(t, content, "found to false")
	assert.Equal(t, strings.TrimSpace(content), content)
}

func TestSongPrompt(t *testing.T) {
	b := NewPromptBuilder()

	tests := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{"with artist", "Get Lucky", "Daft Punk", "Song: \"Get Lucky\"\nArtist: \"Daft Punk\""},
		{"no artist", " Get Lucky ", "", "Song: \"Get Lucky\"\nArtist: unknown"},
		{"blank artist", "Get Lucky", "  ", "Song: \"Get Lucky\"\nArtist: unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.SongPrompt(tt.title, tt.artist))
		})
	}
	assert.Equal(t, NewPromptLoader().GetTempoSystemPrompt(), b.SystemPrompt())
}
