package pattern

import "math/rand/v2"

const (
	// downbeatKickFloor keeps very low intensities from producing a silent pattern
	downbeatKickFloor = 0.05
	// anchorThreshold is the intensity from which certain cells (base probability 1) stay certain
	anchorThreshold = 0.5
	// durationHintSlots is the note length, in slots, handed to serialization
	durationHintSlots = 0.5
)

// intensityScale maps a base probability to its effective value at an intensity.
// It is linear in intensity, returns the base unchanged at 1 and zero at 0,
// except that certain cells hold from anchorThreshold upwards and the downbeat
// kick never drops below downbeatKickFloor.
func intensityScale(base, intensity float64, v Voice, r MetricalRole) float64 {
	p := base * intensity
	if base >= 1 && intensity >= anchorThreshold {
		p = 1
	}
	if v == Kick && r == Downbeat && base > 0 && p < downbeatKickFloor {
		p = downbeatKickFloor
	}
	return p
}

// Trigger decides, slot by slot and voice by voice, which planned notes fire.
// Exactly one draw is taken per (slot, voice) pair, plus one velocity draw per hit,
// slots ascending and voices in canonical order.
func Trigger(grid *Grid, profile *StyleProfile, intensity float64, rng *rand.Rand) ([]NoteEvent, error) {
	if err := checkUnit("intensity", intensity); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, invalidParam("style", nil, "profile is required")
	}

	duration := grid.SlotDuration * durationHintSlots
	events := make([]NoteEvent, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		for _, v := range Voices {
			cell := profile.Cells[v][slot.Role]
			u := rng.Float64()
			if u >= intensityScale(cell.Probability, intensity, v, slot.Role) {
				continue
			}
			events = append(events, NoteEvent{
				Voice:        v,
				Time:         slot.Time,
				Velocity:     drawVelocity(rng, cell.Low, cell.High),
				DurationHint: duration,
				Origin:       Planned,
				Slot:         slot.Index,
			})
		}
	}
	return events, nil
}

// drawVelocity picks a velocity uniformly in [low, high] using one draw
func drawVelocity(rng *rand.Rand, low, high int) int {
	if high < low {
		low, high = high, low
	}
	span := high - low + 1
	v := low + int(rng.Float64()*float64(span))
	if v > high {
		v = high
	}
	return ClampVelocity(v)
}
