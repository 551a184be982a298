package llm

const (
	// Plausible song tempo range
	tempoBPMMin = 40
	tempoBPMMax = 300
)

// TempoSchemaName names the structured tempo answer
const TempoSchemaName = "song_tempo"

// GetTempoOutputSchema returns the JSON schema for a song tempo lookup answer
func GetTempoOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"found": map[string]any{
				"type":        "boolean",
				"description": "false when the song is unknown or ambiguous",
			},
			"bpm": map[string]any{
				"type":        "number",
				"minimum":     tempoBPMMin,
				"maximum":     tempoBPMMax,
				"description": "original studio recording tempo in beats per minute",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
		"required":             []string{"found", "bpm", "confidence"},
		"additionalProperties": false,
	}
}
