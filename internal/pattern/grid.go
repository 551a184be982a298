package pattern

import (
	"fmt"
	"math"
)

const (
	secondsPerMinute = 60.0
	quarterNote      = 4.0
)

// MaxSlots bounds bars × numerator × stepsPerBeat for a single pattern.
// 65536 slots is 1024 bars of 4/4 at sixteen steps per beat.
const MaxSlots = 1 << 16

// TimeSlot is one discrete grid position. Slots are built once per pattern and never mutated.
type TimeSlot struct {
	Index int          `json:"index"`
	Time  float64      `json:"time"`
	Role  MetricalRole `json:"role"`
	Bar   int          `json:"bar"`
	Beat  int          `json:"beat"`
	Step  int          `json:"step"`
}

// Grid is the ordered slot sequence of a pattern plus its timing constants
type Grid struct {
	Slots        []TimeSlot
	BPM          float64
	Meter        Meter
	Bars         int
	StepsPerBeat int
	SlotDuration float64 // seconds
	BarDuration  float64 // seconds
	Duration     float64 // seconds, whole pattern
}

// slotCount multiplies out the grid size, refusing anything past MaxSlots
// before the product can overflow. Inputs must already be >= 1.
func slotCount(meter Meter, bars, stepsPerBeat int) (int, error) {
	if meter.Numerator > MaxSlots {
		return 0, invalidParam("meter", meter.String(), fmt.Sprintf("grid would exceed %d slots", MaxSlots))
	}
	if stepsPerBeat > MaxSlots/meter.Numerator {
		return 0, invalidParam("steps_per_beat", stepsPerBeat, fmt.Sprintf("grid would exceed %d slots", MaxSlots))
	}
	slotsPerBar := meter.Numerator * stepsPerBeat
	if bars > MaxSlots/slotsPerBar {
		return 0, invalidParam("bars", bars, fmt.Sprintf("grid would exceed %d slots", MaxSlots))
	}
	return bars * slotsPerBar, nil
}

// BuildGrid converts tempo and meter into an ordered slot sequence of
// bars × numerator × stepsPerBeat slots in strictly increasing time.
func BuildGrid(bpm float64, meter Meter, bars, stepsPerBeat int) (*Grid, error) {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return nil, invalidParam("bpm", bpm, "must be > 0")
	}
	if bars < 1 {
		return nil, invalidParam("bars", bars, "must be >= 1")
	}
	if stepsPerBeat < 1 {
		return nil, invalidParam("steps_per_beat", stepsPerBeat, "must be >= 1")
	}
	if err := meter.Validate(); err != nil {
		return nil, err
	}
	total, err := slotCount(meter, bars, stepsPerBeat)
	if err != nil {
		return nil, err
	}

	beatDuration := (secondsPerMinute / bpm) * (quarterNote / float64(meter.Denominator))
	slotDuration := beatDuration / float64(stepsPerBeat)
	slotsPerBar := meter.Numerator * stepsPerBeat

	backbeats := backbeatPositions(meter)
	slots := make([]TimeSlot, total)
	for i := range slots {
		bar := i / slotsPerBar
		inBar := i % slotsPerBar
		beat := inBar / stepsPerBeat
		step := inBar % stepsPerBeat
		slots[i] = TimeSlot{
			Index: i,
			Time:  float64(i) * slotDuration,
			Role:  roleFor(beat, step, stepsPerBeat, backbeats),
			Bar:   bar,
			Beat:  beat,
			Step:  step,
		}
	}

	return &Grid{
		Slots:        slots,
		BPM:          bpm,
		Meter:        meter,
		Bars:         bars,
		StepsPerBeat: stepsPerBeat,
		SlotDuration: slotDuration,
		BarDuration:  float64(slotsPerBar) * slotDuration,
		Duration:     float64(total) * slotDuration,
	}, nil
}

// BarStart returns the start time of a bar
func (g *Grid) BarStart(bar int) float64 {
	return float64(bar) * g.BarDuration
}

// BarEnd returns the end time of a bar (the start of the next one)
func (g *Grid) BarEnd(bar int) float64 {
	return float64(bar+1) * g.BarDuration
}

// roleFor assigns the metrical role of a step within a beat
func roleFor(beat, step, stepsPerBeat int, backbeats map[int]bool) MetricalRole {
	if step == 0 {
		switch {
		case beat == 0:
			return Downbeat
		case backbeats[beat]:
			return Backbeat
		default:
			return Beat
		}
	}
	if stepsPerBeat%2 == 0 && step == stepsPerBeat/2 {
		return OffBeat
	}
	return Subdivision
}

// backbeatPositions returns the 0-based beat indexes that carry the backbeat.
// Two- and three-beat meters put it on beat 2, compound meters (6/8, 9/8, 12/8)
// on every other dotted group, and everything else on the even-numbered beats.
func backbeatPositions(meter Meter) map[int]bool {
	positions := make(map[int]bool)
	n := meter.Numerator
	switch {
	case n <= 1:
	case n <= 3:
		positions[1] = true
	case meter.Denominator >= 8 && n%3 == 0:
		for group := 1; group*3 < n; group += 2 {
			positions[group*3] = true
		}
	default:
		for beat := 1; beat < n; beat += 2 {
			positions[beat] = true
		}
	}
	return positions
}
