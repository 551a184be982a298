package pattern

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrid_CommonTime(t *testing.T) {
	grid, err := BuildGrid(120, CommonTime, 2, 4)
	require.NoError(t, err)

	assert.Len(t, grid.Slots, 2*4*4)
	assert.InDelta(t, 0.125, grid.SlotDuration, 1e-12)
	assert.InDelta(t, 2.0, grid.BarDuration, 1e-12)
	assert.InDelta(t, 4.0, grid.Duration, 1e-12)

	for i := 1; i < len(grid.Slots); i++ {
		assert.Greater(t, grid.Slots[i].Time, grid.Slots[i-1].Time, "slot %d should be later than slot %d", i, i-1)
		assert.Equal(t, i, grid.Slots[i].Index)
	}

	expected := map[int]MetricalRole{
		0:  Downbeat,
		1:  Subdivision,
		2:  OffBeat,
		3:  Subdivision,
		4:  Backbeat,
		6:  OffBeat,
		8:  Beat,
		12: Backbeat,
		16: Downbeat,
		20: Backbeat,
		24: Beat,
	}
	for idx, role := range expected {
		assert.Equal(t, role, grid.Slots[idx].Role, "slot %d", idx)
	}

	second := grid.Slots[16]
	assert.Equal(t, 1, second.Bar)
	assert.Equal(t, 0, second.Beat)
	assert.InDelta(t, 2.0, second.Time, 1e-12)
}

func TestBuildGrid_Meters(t *testing.T) {
	tests := []struct {
		name         string
		meter        Meter
		stepsPerBeat int
		bpm          float64
		slotDuration float64
		roles        map[int]MetricalRole
	}{
		{
			name:         "three four puts the backbeat on beat two",
			meter:        Meter{Numerator: 3, Denominator: 4},
			stepsPerBeat: 2,
			bpm:          120,
			slotDuration: 0.25,
			roles:        map[int]MetricalRole{0: Downbeat, 1: OffBeat, 2: Backbeat, 4: Beat},
		},
		{
			name:         "two four",
			meter:        Meter{Numerator: 2, Denominator: 4},
			stepsPerBeat: 1,
			bpm:          60,
			slotDuration: 1.0,
			roles:        map[int]MetricalRole{0: Downbeat, 1: Backbeat},
		},
		{
			name:         "six eight groups in dotted quarters",
			meter:        Meter{Numerator: 6, Denominator: 8},
			stepsPerBeat: 1,
			bpm:          120,
			slotDuration: 0.25,
			roles:        map[int]MetricalRole{0: Downbeat, 1: Beat, 2: Beat, 3: Backbeat, 4: Beat, 5: Beat},
		},
		{
			name:         "triplet steps have no offbeat",
			meter:        CommonTime,
			stepsPerBeat: 3,
			bpm:          100,
			slotDuration: 0.2,
			roles:        map[int]MetricalRole{0: Downbeat, 1: Subdivision, 2: Subdivision, 3: Backbeat},
		},
		{
			name:         "half-note beats",
			meter:        Meter{Numerator: 2, Denominator: 2},
			stepsPerBeat: 2,
			bpm:          60,
			slotDuration: 1.0,
			roles:        map[int]MetricalRole{0: Downbeat, 1: OffBeat, 2: Backbeat, 3: OffBeat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := BuildGrid(tt.bpm, tt.meter, 1, tt.stepsPerBeat)
			require.NoError(t, err)
			assert.Len(t, grid.Slots, tt.meter.Numerator*tt.stepsPerBeat)
			assert.InDelta(t, tt.slotDuration, grid.SlotDuration, 1e-12)
			for idx, role := range tt.roles {
				assert.Equal(t, role, grid.Slots[idx].Role, "slot %d", idx)
			}
		})
	}
}

func TestBuildGrid_InvalidParameters(t *testing.T) {
	tests := []struct {
		name         string
		bpm          float64
		meter        Meter
		bars         int
		stepsPerBeat int
		field        string
	}{
		{"zero bpm", 0, CommonTime, 1, 4, "bpm"},
		{"negative bpm", -120, CommonTime, 1, 4, "bpm"},
		{"zero bars", 120, CommonTime, 0, 4, "bars"},
		{"zero steps", 120, CommonTime, 1, 0, "steps_per_beat"},
		{"zero numerator", 120, Meter{Numerator: 0, Denominator: 4}, 1, 4, "meter"},
		{"odd denominator", 120, Meter{Numerator: 4, Denominator: 3}, 1, 4, "meter"},
		{"whole-note denominator", 120, Meter{Numerator: 4, Denominator: 1}, 1, 4, "meter"},
		{"bars overflow the slot count", 120, CommonTime, math.MaxInt / 8, 4, "bars"},
		{"bars past the slot limit", 120, CommonTime, 10_000_000, 16, "bars"},
		{"one bar too many", 120, CommonTime, MaxSlots/16 + 1, 4, "bars"},
		{"steps overflow the bar", 120, CommonTime, 1, math.MaxInt / 2, "steps_per_beat"},
		{"numerator past the slot limit", 120, Meter{Numerator: math.MaxInt, Denominator: 4}, 1, 1, "meter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := BuildGrid(tt.bpm, tt.meter, tt.bars, tt.stepsPerBeat)
			require.Error(t, err)
			assert.Nil(t, grid)
			assert.True(t, errors.Is(err, ErrInvalidParameter))

			var invalid *InvalidParameterError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestBuildGrid_AtSlotLimit(t *testing.T) {
	grid, err := BuildGrid(120, CommonTime, MaxSlots/16, 4)
	require.NoError(t, err)
	assert.Len(t, grid.Slots, MaxSlots)
}

func TestParseMeter(t *testing.T) {
	m, err := ParseMeter("6/8")
	require.NoError(t, err)
	assert.Equal(t, Meter{Numerator: 6, Denominator: 8}, m)
	assert.Equal(t, "6/8", m.String())

	m, err = ParseMeter(" 3 / 4 ")
	require.NoError(t, err)
	assert.Equal(t, Meter{Numerator: 3, Denominator: 4}, m)

	for _, bad := range []string{"", "4", "4/4/4", "a/4", "4/b", "4/5", "0/4"} {
		_, err := ParseMeter(bad)
		assert.ErrorIs(t, err, ErrInvalidParameter, "meter %q", bad)
	}
}
