package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Voice identifies a percussion instrument. The declaration order is the canonical
// order in which random draws are consumed and equal-time events are sorted.
type Voice int

const (
	Kick Voice = iota
	Snare
	ClosedHat
	OpenHat
	Clap
	numVoices
)

// Voices lists every voice in canonical order
var Voices = [numVoices]Voice{Kick, Snare, ClosedHat, OpenHat, Clap}

var voiceNames = [numVoices]string{"kick", "snare", "closed_hat", "open_hat", "clap"}

// General MIDI percussion keys (channel 10)
var voiceKeys = [numVoices]uint8{36, 38, 42, 46, 39}

func (v Voice) String() string {
	if v < 0 || v >= numVoices {
		return "voice(" + strconv.Itoa(int(v)) + ")"
	}
	return voiceNames[v]
}

// MarshalText renders the voice by name in JSON payloads
func (v Voice) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVoice looks a voice up by name
func ParseVoice(name string) (Voice, bool) {
	for i, n := range voiceNames {
		if n == name {
			return Voice(i), true
		}
	}
	return 0, false
}

// MIDIKey returns the General MIDI drum key for the voice
func (v Voice) MIDIKey() uint8 {
	if v < 0 || v >= numVoices {
		return 0
	}
	return voiceKeys[v]
}

// MetricalRole is a slot's musical function, used to index style probabilities
type MetricalRole int

const (
	Downbeat MetricalRole = iota
	Backbeat
	Beat // beat-aligned, neither downbeat nor backbeat
	OffBeat
	Subdivision
	numRoles
)

var roleNames = [numRoles]string{"downbeat", "backbeat", "beat", "offbeat", "subdivision"}

func (r MetricalRole) String() string {
	if r < 0 || r >= numRoles {
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
	return roleNames[r]
}

func (r MetricalRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Origin tells planned notes apart from humanization ghost notes
type Origin int

const (
	Planned Origin = iota
	Ghost
)

func (o Origin) String() string {
	if o == Ghost {
		return "ghost"
	}
	return "planned"
}

func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Velocity domain for instrument velocities
const (
	VelocityMin = 1
	VelocityMax = 127
)

// Meter is a time signature such as 4/4 or 6/8
type Meter struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// CommonTime is 4/4
var CommonTime = Meter{Numerator: 4, Denominator: 4}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.Numerator, m.Denominator)
}

// Validate checks the numerator and that the denominator is a conventional note value
func (m Meter) Validate() error {
	if m.Numerator < 1 {
		return invalidParam("meter", m.String(), "numerator must be >= 1")
	}
	switch m.Denominator {
	case 2, 4, 8, 16:
		return nil
	default:
		return invalidParam("meter", m.String(), "denominator must be one of 2, 4, 8, 16")
	}
}

// ParseMeter parses a time signature string like "4/4", "3/4" or "6/8"
func ParseMeter(value string) (Meter, error) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 2 {
		return Meter{}, invalidParam("meter", value, "use a format like 4/4, 3/4 or 6/8")
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Meter{}, invalidParam("meter", value, "numerator is not an integer")
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Meter{}, invalidParam("meter", value, "denominator is not an integer")
	}
	m := Meter{Numerator: num, Denominator: den}
	if err := m.Validate(); err != nil {
		return Meter{}, err
	}
	return m, nil
}

// NoteEvent is one timed percussion hit. Stages never edit an event in place;
// they return adjusted copies.
type NoteEvent struct {
	Voice        Voice   `json:"voice"`
	Time         float64 `json:"time"`
	Velocity     int     `json:"velocity"`
	DurationHint float64 `json:"duration_hint"`
	Origin       Origin  `json:"origin"`
	Slot         int     `json:"slot"`
}

// ClampVelocity pushes a velocity back into the instrument domain
func ClampVelocity(v int) int {
	if v < VelocityMin {
		return VelocityMin
	}
	if v > VelocityMax {
		return VelocityMax
	}
	return v
}
