package tempo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/beatstoch-api/internal/llm"
	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
	"github.com/Conceptual-Machines/beatstoch-api/internal/prompt"
)

var firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// tempoAnswer is the structured reply requested from the model
type tempoAnswer struct {
	Found      bool    `json:"found"`
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

// LLMResolver asks a language model for the tempo
type LLMResolver struct {
	provider      llm.Provider
	model         string
	prompts       *prompt.Builder
	minConfidence float64
}

// NewLLMResolver creates a resolver backed by provider using model
func NewLLMResolver(provider llm.Provider, model string) *LLMResolver {
	return &LLMResolver{provider: provider, model: model, prompts: prompt.NewPromptBuilder(), minConfidence: 0.3}
}

// Resolve implements Resolver
func (r *LLMResolver) Resolve(ctx context.Context, title, artist string) (float64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: empty title", ErrNotFound)
	}

	request := &llm.GenerationRequest{
		Model:        r.model,
		SystemPrompt: r.prompts.SystemPrompt(),
		InputArray:   llm.UserMessage(r.prompts.SongPrompt(title, artist)),
		OutputSchema: &llm.OutputSchema{
			Name:        llm.TempoSchemaName,
			Description: "Tempo of a song",
			Schema:      llm.GetTempoOutputSchema(),
		},
	}

	resp, err := r.provider.Generate(ctx, request)
	if err != nil {
		return 0, fmt.Errorf("tempo lookup via %s failed: %w", r.provider.Name(), err)
	}

	bpm, err := parseAnswer(resp.RawOutput, r.minConfidence)
	if err != nil {
		logger.Debug("Tempo answer rejected", logger.Fields{
			"title":  title,
			"artist": artist,
			"output": resp.RawOutput,
		})
		return 0, fmt.Errorf("%w (%s)", notFound(title, artist), err.Error())
	}
	return bpm, nil
}

// parseAnswer reads the structured answer, falling back to the first number in
// free text for providers that ignore the schema
func parseAnswer(output string, minConfidence float64) (float64, error) {
	var answer tempoAnswer
	if err := json.Unmarshal([]byte(output), &answer); err == nil {
		if !answer.Found {
			return 0, fmt.Errorf("model does not know the song")
		}
		if answer.Confidence < minConfidence {
			return 0, fmt.Errorf("confidence %.2f below %.2f", answer.Confidence, minConfidence)
		}
		return checkRange(answer.BPM)
	}

	match := firstNumber.FindString(output)
	if match == "" {
		return 0, fmt.Errorf("no number in answer")
	}
	bpm, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, err
	}
	return checkRange(bpm)
}

func checkRange(bpm float64) (float64, error) {
	if !InRange(bpm) {
		return 0, fmt.Errorf("bpm %v outside %v..%v", bpm, MinBPM, MaxBPM)
	}
	return bpm, nil
}
