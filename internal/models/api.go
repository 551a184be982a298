package models

import (
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
)

// GeneratePatternRequest is the body of POST /api/v1/patterns. Omitted fields take
// the command-line defaults.
type GeneratePatternRequest struct {
	BPM             float64  `json:"bpm" binding:"required"`
	Bars            *int     `json:"bars,omitempty"`
	Style           string   `json:"style,omitempty"`
	Meter           string   `json:"meter,omitempty"` // "4/4", "6/8", ...
	StepsPerBeat    *int     `json:"steps_per_beat,omitempty"`
	Swing           *float64 `json:"swing,omitempty"`
	Intensity       *float64 `json:"intensity,omitempty"`
	GrooveIntensity *float64 `json:"groove_intensity,omitempty"`
	Humanize        *float64 `json:"humanize,omitempty"`
	Seed            *int64   `json:"seed,omitempty"`
}

// Params applies defaults and parses the style and meter
func (r *GeneratePatternRequest) Params() (pattern.Params, error) {
	p := pattern.DefaultParams(r.BPM)
	if err := applyShared(&p, r.Bars, r.Style, r.Meter, r.StepsPerBeat, r.Swing, r.Intensity, r.GrooveIntensity, r.Humanize); err != nil {
		return pattern.Params{}, err
	}
	if r.Seed != nil {
		p.Seed = *r.Seed
	}
	return p, nil
}

// FromSongRequest is the body of POST /api/v1/patterns/from-song
type FromSongRequest struct {
	Title           string   `json:"title" binding:"required"`
	Artist          string   `json:"artist,omitempty"`
	FallbackBPM     *float64 `json:"fallback_bpm,omitempty"`
	Bars            *int     `json:"bars,omitempty"`
	Style           string   `json:"style,omitempty"`
	Meter           string   `json:"meter,omitempty"`
	StepsPerBeat    *int     `json:"steps_per_beat,omitempty"`
	Swing           *float64 `json:"swing,omitempty"`
	Intensity       *float64 `json:"intensity,omitempty"`
	GrooveIntensity *float64 `json:"groove_intensity,omitempty"`
	Humanize        *float64 `json:"humanize,omitempty"`
	Seed            *int64   `json:"seed,omitempty"`
}

// SongRequest converts the body into a generation request
func (r *FromSongRequest) SongRequest() (pattern.SongRequest, error) {
	p := pattern.DefaultParams(0)
	if err := applyShared(&p, r.Bars, r.Style, r.Meter, r.StepsPerBeat, r.Swing, r.Intensity, r.GrooveIntensity, r.Humanize); err != nil {
		return pattern.SongRequest{}, err
	}
	return pattern.SongRequest{
		Title:       r.Title,
		Artist:      r.Artist,
		FallbackBPM: r.FallbackBPM,
		Seed:        r.Seed,
		Params:      p,
	}, nil
}

func applyShared(p *pattern.Params, bars *int, style, meter string, steps *int, swing, intensity, groove, humanize *float64) error {
	if bars != nil {
		p.Bars = *bars
	}
	if steps != nil {
		p.StepsPerBeat = *steps
	}
	if style != "" {
		s, err := pattern.ParseStyle(style)
		if err != nil {
			return err
		}
		p.Style = s
	}
	if meter != "" {
		m, err := pattern.ParseMeter(meter)
		if err != nil {
			return err
		}
		p.Meter = m
	}
	setFloat(&p.Swing, swing)
	setFloat(&p.Intensity, intensity)
	setFloat(&p.GrooveIntensity, groove)
	setFloat(&p.Humanize, humanize)
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// PatternResponse is returned by the generation endpoints
type PatternResponse struct {
	ID           string              `json:"id,omitempty"`
	BPMUsed      float64             `json:"bpm_used"`
	Params       pattern.Params      `json:"params"`
	SlotCount    int                 `json:"slot_count"`
	SlotDuration float64             `json:"slot_duration"`
	Duration     float64             `json:"duration"`
	EventCount   int                 `json:"event_count"`
	Events       []pattern.NoteEvent `json:"events"`
	Grids        map[string][]string `json:"grids"` // voice -> one line per bar
	Dropped      int                 `json:"dropped"`
	Clamps       int                 `json:"clamps"`
}

// StyleSummary describes one style for GET /api/v1/styles
type StyleSummary struct {
	Name    string             `json:"name"`
	Density map[string]float64 `json:"density"` // expected hits per 4/4 bar at intensity 1
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
