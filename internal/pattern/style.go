package pattern

import (
	"fmt"
	"strings"
)

// Style is the closed set of supported stylistic presets
type Style int

const (
	StyleHouse Style = iota
	StyleBreaks
	StyleGeneric
	numStyles
)

// DefaultStyle matches the command-line default
const DefaultStyle = StyleHouse

var styleNames = [numStyles]string{"house", "breaks", "generic"}

func (s Style) String() string {
	if s < 0 || s >= numStyles {
		return fmt.Sprintf("style(%d)", int(s))
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStyle resolves a style name, case-insensitively
func ParseStyle(name string) (Style, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == key {
			return Style(i), nil
		}
	}
	return 0, &UnknownStyleError{Name: name}
}

// StyleNames lists the supported style names
func StyleNames() []string {
	return append([]string(nil), styleNames[:]...)
}

func joinStyleNames() string {
	return strings.Join(styleNames[:], ", ")
}

// TriggerCell is one cell of a style profile: the chance a voice fires on a role
// and the velocity range it fires with.
type TriggerCell struct {
	Probability float64 `json:"probability"`
	Low         int     `json:"velocity_low"`
	High        int     `json:"velocity_high"`
}

// StyleProfile holds per-voice, per-role trigger cells plus ghost-note weights.
// Profiles are package-level values built once and only ever read.
type StyleProfile struct {
	Style Style
	Cells [numVoices][numRoles]TriggerCell
	// Ghost is the per-slot chance, at humanize=1, of a ghost note for the voice
	Ghost [numVoices]float64
}

// Cell returns the trigger cell for a voice on a metrical role
func (p *StyleProfile) Cell(v Voice, r MetricalRole) TriggerCell {
	return p.Cells[v][r]
}

// Validate checks every probability is in [0,1] and every velocity range is ordered and in domain
func (p *StyleProfile) Validate() error {
	for _, v := range Voices {
		for r := MetricalRole(0); r < numRoles; r++ {
			c := p.Cells[v][r]
			if c.Probability < 0 || c.Probability > 1 {
				return fmt.Errorf("%s/%s/%s: probability %v out of range", p.Style, v, r, c.Probability)
			}
			if c.Low < VelocityMin || c.High > VelocityMax || c.Low > c.High {
				return fmt.Errorf("%s/%s/%s: velocity range [%d,%d] invalid", p.Style, v, r, c.Low, c.High)
			}
		}
		if p.Ghost[v] < 0 || p.Ghost[v] > 1 {
			return fmt.Errorf("%s/%s: ghost probability %v out of range", p.Style, v, p.Ghost[v])
		}
	}
	return nil
}

// Density is the expected hits per bar for a voice at intensity 1 in a 4/4, 4-step grid
func (p *StyleProfile) Density(v Voice) float64 {
	g, err := BuildGrid(120, CommonTime, 1, 4)
	if err != nil {
		return 0
	}
	total := 0.0
	for _, slot := range g.Slots {
		total += p.Cells[v][slot.Role].Probability
	}
	return total
}

// ProfileFor returns the profile of a style name
func ProfileFor(name string) (*StyleProfile, error) {
	s, err := ParseStyle(name)
	if err != nil {
		return nil, err
	}
	return s.Profile(), nil
}

// Profile returns the shared read-only profile of the style
func (s Style) Profile() *StyleProfile {
	if s < 0 || s >= numStyles {
		return nil
	}
	return &profiles[s]
}

func hit(p float64, low, high int) TriggerCell {
	return TriggerCell{Probability: p, Low: low, High: high}
}

var rest = TriggerCell{Probability: 0, Low: VelocityMin, High: VelocityMin}

// The tunable sound of the engine. Columns follow MetricalRole order:
// downbeat, backbeat, beat, offbeat, subdivision.
var profiles = [numStyles]StyleProfile{
	StyleHouse: {
		Style: StyleHouse,
		Cells: [numVoices][numRoles]TriggerCell{
			Kick:      {hit(1, 110, 127), hit(1, 105, 120), hit(1, 105, 120), hit(0.04, 70, 90), hit(0.02, 60, 80)},
			Snare:     {rest, rest, rest, rest, rest},
			ClosedHat: {hit(0.2, 60, 80), hit(0.3, 60, 80), hit(0.3, 60, 80), hit(0.35, 70, 95), hit(0.85, 55, 85)},
			OpenHat:   {rest, rest, rest, hit(0.9, 80, 105), hit(0.03, 60, 80)},
			Clap:      {rest, hit(0.95, 95, 115), hit(0.05, 70, 90), hit(0.02, 60, 80), hit(0.03, 50, 70)},
		},
		Ghost: [numVoices]float64{Snare: 0.04, ClosedHat: 0.10},
	},
	StyleBreaks: {
		Style: StyleBreaks,
		Cells: [numVoices][numRoles]TriggerCell{
			Kick:      {hit(1, 105, 127), hit(0.05, 80, 100), hit(0.3, 90, 115), hit(0.45, 85, 110), hit(0.3, 75, 105)},
			Snare:     {rest, hit(1, 100, 125), hit(0.1, 70, 95), hit(0.25, 60, 95), hit(0.2, 45, 80)},
			ClosedHat: {hit(0.8, 70, 95), hit(0.8, 70, 95), hit(0.8, 70, 95), hit(0.75, 65, 95), hit(0.55, 45, 85)},
			OpenHat:   {rest, rest, hit(0.05, 75, 100), hit(0.15, 75, 100), hit(0.08, 70, 95)},
			Clap:      {rest, hit(0.2, 80, 100), rest, rest, rest},
		},
		Ghost: [numVoices]float64{Snare: 0.22, ClosedHat: 0.12},
	},
	StyleGeneric: {
		Style: StyleGeneric,
		Cells: [numVoices][numRoles]TriggerCell{
			Kick:      {hit(1, 100, 120), rest, hit(0.35, 85, 105), rest, rest},
			Snare:     {rest, hit(0.9, 90, 115), hit(0.05, 70, 90), hit(0.05, 60, 85), hit(0.03, 50, 75)},
			ClosedHat: {hit(0.6, 65, 90), hit(0.6, 65, 90), hit(0.6, 65, 90), hit(0.55, 60, 85), hit(0.25, 50, 75)},
			OpenHat:   {rest, rest, hit(0.02, 70, 90), hit(0.1, 70, 95), hit(0.02, 60, 80)},
			Clap:      {rest, hit(0.1, 80, 100), rest, rest, rest},
		},
		Ghost: [numVoices]float64{Snare: 0.08, ClosedHat: 0.06},
	},
}
