package models

import (
	"time"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"gorm.io/gorm"
)

// PatternRecord archives the parameters of a generated pattern. Generation is
// deterministic, so the events are rebuilt from these columns on read.
type PatternRecord struct {
	ID              string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Owner           string         `gorm:"index" json:"owner,omitempty"` // user id from the auth layer
	Title           string         `json:"title,omitempty"`
	Artist          string         `json:"artist,omitempty"`
	Style           string         `gorm:"not null;index" json:"style"`
	BPM             float64        `gorm:"not null" json:"bpm"`
	Bars            int            `gorm:"not null" json:"bars"`
	MeterNumerator  int            `gorm:"not null" json:"meter_numerator"`
	MeterDenom      int            `gorm:"not null" json:"meter_denominator"`
	StepsPerBeat    int            `gorm:"not null" json:"steps_per_beat"`
	Swing           float64        `json:"swing"`
	Intensity       float64        `json:"intensity"`
	GrooveIntensity float64        `json:"groove_intensity"`
	Humanize        float64        `json:"humanize"`
	Seed            int64          `json:"seed"`
	EventCount      int            `json:"event_count"`
}

// NewPatternRecord flattens a generated pattern for storage
func NewPatternRecord(id string, p *pattern.Pattern) *PatternRecord {
	params := p.Params
	return &PatternRecord{
		ID:              id,
		Style:           params.Style.String(),
		BPM:             params.BPM,
		Bars:            params.Bars,
		MeterNumerator:  params.Meter.Numerator,
		MeterDenom:      params.Meter.Denominator,
		StepsPerBeat:    params.StepsPerBeat,
		Swing:           params.Swing,
		Intensity:       params.Intensity,
		GrooveIntensity: params.GrooveIntensity,
		Humanize:        params.Humanize,
		Seed:            params.Seed,
		EventCount:      len(p.Events),
	}
}

// Params rebuilds the generation parameters
func (r *PatternRecord) Params() (pattern.Params, error) {
	style, err := pattern.ParseStyle(r.Style)
	if err != nil {
		return pattern.Params{}, err
	}
	return pattern.Params{
		BPM:             r.BPM,
		Bars:            r.Bars,
		Meter:           pattern.Meter{Numerator: r.MeterNumerator, Denominator: r.MeterDenom},
		StepsPerBeat:    r.StepsPerBeat,
		Swing:           r.Swing,
		Intensity:       r.Intensity,
		GrooveIntensity: r.GrooveIntensity,
		Humanize:        r.Humanize,
		Seed:            r.Seed,
		Style:           style,
	}, nil
}
