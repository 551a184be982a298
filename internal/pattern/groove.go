package pattern

import (
	"math"
	"math/rand/v2"
)

const (
	// timeEpsilon keeps clamped events strictly before the following slot or bar
	timeEpsilon = 1e-6

	// grooveTimingSpread is the random micro-timing range, as a fraction of a slot, at groove 1
	grooveTimingSpread = 0.03
	// grooveVelocitySpread is the random velocity nudge range at groove 1
	grooveVelocitySpread = 10.0
)

// grooveFeel is the systematic placement of each voice, as a fraction of a slot
// at groove 1: the backbeat sits slightly behind the grid, hats slightly ahead.
var grooveFeel = [numVoices]float64{
	Kick:      0,
	Snare:     0.015,
	ClosedHat: -0.01,
	OpenHat:   -0.005,
	Clap:      0.015,
}

// grooveAccent is the systematic velocity emphasis per metrical role at groove 1
var grooveAccent = [numRoles]float64{
	Downbeat:    6,
	Backbeat:    4,
	Beat:        2,
	OffBeat:     0,
	Subdivision: -6,
}

// Diagnostics collects the silent corrections made during one generation
type Diagnostics struct {
	Clamps  int         `json:"clamps"`
	Dropped []NoteEvent `json:"dropped,omitempty"`
}

func (d *Diagnostics) clamp() {
	if d != nil {
		d.Clamps++
	}
}

// clampTime bounds t to [lo, hi], counting a correction when it moves
func clampTime(t, lo, hi float64, d *Diagnostics) float64 {
	if t < lo {
		d.clamp()
		return lo
	}
	if t > hi {
		d.clamp()
		return hi
	}
	return t
}

func clampVelocityCounted(v int, d *Diagnostics) int {
	c := ClampVelocity(v)
	if c != v {
		d.clamp()
	}
	return c
}

// ApplyTiming delays off-beat events by swing and applies groove micro-timing and
// velocity nudges. Output corresponds one-to-one with the input.
func ApplyTiming(grid *Grid, events []NoteEvent, swing, grooveIntensity float64, rng *rand.Rand) ([]NoteEvent, error) {
	return applyTiming(grid, events, swing, grooveIntensity, rng, nil)
}

func applyTiming(
	grid *Grid,
	events []NoteEvent,
	swing, grooveIntensity float64,
	rng *rand.Rand,
	diag *Diagnostics,
) ([]NoteEvent, error) {
	if err := checkUnit("swing", swing); err != nil {
		return nil, err
	}
	if err := checkUnit("groove_intensity", grooveIntensity); err != nil {
		return nil, err
	}

	halfStep := grid.SlotDuration / 2
	out := make([]NoteEvent, len(events))
	for i, ev := range events {
		slot := grid.Slots[ev.Slot]
		t := ev.Time
		velocity := ev.Velocity

		if slot.Role == OffBeat && swing > 0 {
			t += swing * halfStep
		}

		if grooveIntensity > 0 {
			u := rng.Float64()
			w := rng.Float64()
			shift := (grooveFeel[ev.Voice] + (u*2-1)*grooveTimingSpread) * grid.SlotDuration * grooveIntensity
			nudge := (grooveAccent[slot.Role] + (w*2-1)*grooveVelocitySpread) * grooveIntensity
			t += shift
			velocity += int(math.Round(nudge))
		}

		hi := grid.BarEnd(slot.Bar) - timeEpsilon
		if slot.Role == OffBeat {
			hi = math.Min(hi, slot.Time+grid.SlotDuration-timeEpsilon)
		}
		t = clampTime(t, grid.BarStart(slot.Bar), hi, diag)

		adjusted := ev
		adjusted.Time = t
		adjusted.Velocity = clampVelocityCounted(velocity, diag)
		out[i] = adjusted
	}
	return out, nil
}
