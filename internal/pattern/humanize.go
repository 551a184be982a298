package pattern

import (
	"math"
	"math/rand/v2"
	"slices"
)

const (
	// jitterSpread is the humanize timing range, as a fraction of a slot, at amount 1
	jitterSpread = 0.06
	// MinSeparationSlots is the closest two events of one voice may sit, in slots
	MinSeparationSlots = 0.25
	// ghostOffsetSpread is how far from its slot a ghost note may land, in slots
	ghostOffsetSpread = 0.25
	ghostVelocityLow  = 16
	ghostVelocityHigh = 40
	// ghostAttempts is the first placement plus one retry
	ghostAttempts = 2
)

// Humanize jitters every event and inserts low-velocity ghost notes into the
// gaps between planned hits. It is a no-op at amount 0.
func Humanize(grid *Grid, profile *StyleProfile, events []NoteEvent, amount float64, rng *rand.Rand) ([]NoteEvent, error) {
	return humanize(grid, profile, events, amount, rng, nil)
}

func humanize(
	grid *Grid,
	profile *StyleProfile,
	events []NoteEvent,
	amount float64,
	rng *rand.Rand,
	diag *Diagnostics,
) ([]NoteEvent, error) {
	if err := checkUnit("humanize", amount); err != nil {
		return nil, err
	}
	if amount == 0 {
		return events, nil
	}

	minSep := MinSeparationSlots * grid.SlotDuration
	out := make([]NoteEvent, 0, len(events)+len(events)/4)

	// Jitter pass, in the incoming (slot, canonical voice) order
	var last [numVoices]float64
	for i := range last {
		last[i] = math.Inf(-1)
	}
	var occupied [numVoices]map[int]bool
	for i := range occupied {
		occupied[i] = make(map[int]bool)
	}
	for _, ev := range events {
		slot := grid.Slots[ev.Slot]
		u := rng.Float64()
		t := ev.Time + (u*2-1)*jitterSpread*grid.SlotDuration*amount

		lo := math.Max(slot.Time-grid.SlotDuration+timeEpsilon, grid.BarStart(slot.Bar))
		hi := math.Min(slot.Time+grid.SlotDuration-timeEpsilon, grid.BarEnd(slot.Bar)-timeEpsilon)
		t = clampTime(t, lo, hi, diag)
		if t < last[ev.Voice]+minSep {
			// keep the groove-placed time rather than crowd the previous hit
			t = ev.Time
			diag.clamp()
		}
		last[ev.Voice] = t
		occupied[ev.Voice][ev.Slot] = true

		jittered := ev
		jittered.Time = t
		out = append(out, jittered)
	}

	// Per-voice sorted times for the separation check
	var times [numVoices][]float64
	for _, ev := range out {
		times[ev.Voice] = append(times[ev.Voice], ev.Time)
	}
	for v := range times {
		slices.Sort(times[v])
	}

	// Ghost pass over the gaps, slots ascending and voices in canonical order
	duration := grid.SlotDuration * durationHintSlots
	for _, slot := range grid.Slots {
		if slot.Role != OffBeat && slot.Role != Subdivision {
			continue
		}
		for _, v := range Voices {
			weight := profile.Ghost[v]
			if weight == 0 || occupied[v][slot.Index] {
				continue
			}
			if rng.Float64() >= weight*amount {
				continue
			}
			lo := grid.BarStart(slot.Bar)
			hi := grid.BarEnd(slot.Bar) - timeEpsilon
			for attempt := 0; attempt < ghostAttempts; attempt++ {
				offset := (rng.Float64()*2 - 1) * ghostOffsetSpread * grid.SlotDuration
				t := clampTime(slot.Time+offset, lo, hi, nil)
				if !separated(times[v], t, minSep) {
					continue
				}
				times[v] = insertSorted(times[v], t)
				out = append(out, NoteEvent{
					Voice:        v,
					Time:         t,
					Velocity:     drawVelocity(rng, ghostVelocityLow, ghostVelocityHigh),
					DurationHint: duration,
					Origin:       Ghost,
					Slot:         slot.Index,
				})
				break
			}
		}
	}
	return out, nil
}

// separated reports whether t keeps at least minSep from every time in sorted
func separated(sorted []float64, t, minSep float64) bool {
	i, _ := slices.BinarySearch(sorted, t)
	if i < len(sorted) && sorted[i]-t < minSep {
		return false
	}
	if i > 0 && t-sorted[i-1] < minSep {
		return false
	}
	return true
}

func insertSorted(sorted []float64, t float64) []float64 {
	i, _ := slices.BinarySearch(sorted, t)
	return slices.Insert(sorted, i, t)
}
