package handlers

import "time"

const (
	// Song lookups may call an LLM; plain generation is local
	fromSongTimeout = 60 * time.Second

	midiContentType = "audio/midi"
)
