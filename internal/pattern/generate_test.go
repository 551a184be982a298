package pattern

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockResolver is a mock implementation of TempoResolver for testing
type MockResolver struct {
	BPM   float64
	Err   error
	Calls int
}

func (m *MockResolver) Resolve(ctx context.Context, title, artist string) (float64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.BPM, nil
}

func TestGenerateStochasticPattern_Deterministic(t *testing.T) {
	params := DefaultParams(128)
	params.Humanize = 0.6
	params.Seed = 1234

	a, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	b, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	assert.Equal(t, a.Events, b.Events)

	params.Seed++
	c, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	assert.NotEqual(t, a.Events, c.Events)
}

func TestGenerateStochasticPattern_ConcreteScenario(t *testing.T) {
	params := Params{
		BPM:          128,
		Bars:         1,
		Meter:        CommonTime,
		StepsPerBeat: 4,
		Intensity:    1,
		Seed:         1,
		Style:        StyleGeneric,
	}

	p, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	assert.Equal(t, 16, p.SlotCount)
	require.NotEmpty(t, p.Events)

	first := p.Events[0]
	assert.Equal(t, Kick, first.Voice)
	assert.Equal(t, 0.0, first.Time)
}

func TestGenerateStochasticPattern_Ordering(t *testing.T) {
	params := DefaultParams(140)
	params.Style = StyleBreaks
	params.Humanize = 1

	p, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	assert.True(t, slices.IsSortedFunc(p.Events, compareEvents))
}

func TestGenerateStochasticPattern_Bounds(t *testing.T) {
	meters := []Meter{CommonTime, {Numerator: 3, Denominator: 4}, {Numerator: 6, Denominator: 8}, {Numerator: 5, Denominator: 16}}
	for _, style := range []Style{StyleHouse, StyleBreaks, StyleGeneric} {
		for _, meter := range meters {
			for _, extremes := range [][4]float64{{1, 1, 1, 1}, {1, 1, 1, 0}, {0, 0, 0, 0}, {1, 0, 1, 1}} {
				params := Params{
					BPM:             175,
					Bars:            4,
					Meter:           meter,
					StepsPerBeat:    4,
					Swing:           extremes[0],
					GrooveIntensity: extremes[1],
					Humanize:        extremes[2],
					Intensity:       extremes[3],
					Seed:            77,
					Style:           style,
				}
				p, err := GenerateStochasticPattern(params)
				require.NoError(t, err)
				assert.Empty(t, p.Diagnostics.Dropped)

				for _, ev := range p.Events {
					assert.GreaterOrEqual(t, ev.Time, 0.0)
					assert.LessOrEqual(t, ev.Time, p.Duration)
					assert.GreaterOrEqual(t, ev.Velocity, VelocityMin)
					assert.LessOrEqual(t, ev.Velocity, VelocityMax)
				}
			}
		}
	}
}

func TestGenerateStochasticPattern_StyleDifferentiation(t *testing.T) {
	counts := make(map[Style]map[Voice]int)
	for _, style := range []Style{StyleHouse, StyleBreaks, StyleGeneric} {
		params := DefaultParams(124)
		params.Intensity = 1
		params.Swing = 0
		params.Humanize = 0
		params.Style = style
		p, err := GenerateStochasticPattern(params)
		require.NoError(t, err)
		counts[style] = p.CountByVoice(nil)
	}

	assert.GreaterOrEqual(t, counts[StyleHouse][Kick], 32, "house keeps four on the floor")
	assert.LessOrEqual(t, counts[StyleGeneric][Kick], 16)
	assert.GreaterOrEqual(t, counts[StyleBreaks][Snare], 16)
	assert.Zero(t, counts[StyleHouse][Snare])
	assert.NotEqual(t, counts[StyleHouse], counts[StyleBreaks])
	assert.NotEqual(t, counts[StyleHouse], counts[StyleGeneric])
}

func TestGenerateStochasticPattern_HumanizeGhostsAndSeparation(t *testing.T) {
	ghost := Ghost
	for _, style := range []Style{StyleHouse, StyleBreaks, StyleGeneric} {
		t.Run(style.String(), func(t *testing.T) {
			params := DefaultParams(128)
			params.Style = style
			params.Swing = 1
			params.GrooveIntensity = 1

			dry, err := GenerateStochasticPattern(params)
			require.NoError(t, err)
			dryGhosts := 0
			for _, n := range dry.CountByVoice(&ghost) {
				dryGhosts += n
			}
			assert.Zero(t, dryGhosts)

			for _, amount := range []float64{0.25, 0.5, 1} {
				params.Humanize = amount
				p, err := GenerateStochasticPattern(params)
				require.NoError(t, err)

				ghosts := 0
				for _, n := range p.CountByVoice(&ghost) {
					ghosts += n
				}
				assert.GreaterOrEqual(t, ghosts, dryGhosts)

				minSep := MinSeparationSlots * p.SlotDuration
				var last [numVoices]float64
				for i := range last {
					last[i] = math.Inf(-1)
				}
				for _, ev := range p.Events {
					assert.GreaterOrEqual(t, ev.Time-last[ev.Voice], minSep-1e-9, "%s at %.6f", ev.Voice, ev.Time)
					last[ev.Voice] = ev.Time
				}
			}
		})
	}

	params := DefaultParams(128)
	params.Style = StyleBreaks
	params.Humanize = 1
	p, err := GenerateStochasticPattern(params)
	require.NoError(t, err)
	assert.Positive(t, p.CountByVoice(&ghost)[Snare]+p.CountByVoice(&ghost)[ClosedHat])
}

func TestGenerateStochasticPattern_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		target error
	}{
		{"swing above one", func(p *Params) { p.Swing = 1.1 }, ErrInvalidParameter},
		{"negative intensity", func(p *Params) { p.Intensity = -0.5 }, ErrInvalidParameter},
		{"groove NaN", func(p *Params) { p.GrooveIntensity = math.NaN() }, ErrInvalidParameter},
		{"humanize above one", func(p *Params) { p.Humanize = 2 }, ErrInvalidParameter},
		{"zero bars", func(p *Params) { p.Bars = 0 }, ErrInvalidParameter},
		{"too many slots", func(p *Params) { p.Bars = math.MaxInt / 8 }, ErrInvalidParameter},
		{"bad meter", func(p *Params) { p.Meter = Meter{Numerator: 4, Denominator: 6} }, ErrInvalidParameter},
		{"zero bpm", func(p *Params) { p.BPM = 0 }, ErrInvalidParameter},
		{"unknown style", func(p *Params) { p.Style = Style(42) }, ErrUnknownStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams(120)
			tt.mutate(&params)
			p, err := GenerateStochasticPattern(params)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestGenerateFromSong_Resolved(t *testing.T) {
	resolver := &MockResolver{BPM: 126}
	req := SongRequest{Title: "Around the World", Artist: "Daft Punk", Params: DefaultParams(0)}

	p, bpm, err := GenerateFromSong(context.Background(), resolver, req)
	require.NoError(t, err)
	assert.Equal(t, 126.0, bpm)
	assert.Equal(t, 126.0, p.Params.BPM)
	assert.Equal(t, DefaultSeed, p.Params.Seed)
	assert.Equal(t, 1, resolver.Calls)
}

func TestGenerateFromSong_Fallback(t *testing.T) {
	resolver := &MockResolver{Err: errors.New("song not found")}
	fallback := 120.0
	seed := int64(7)
	base := DefaultParams(0)
	base.Humanize = 0.5
	base.Style = StyleBreaks

	p, bpm, err := GenerateFromSong(context.Background(), resolver, SongRequest{
		Title:       "zzzz unknown",
		FallbackBPM: &fallback,
		Seed:        &seed,
		Params:      base,
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, bpm)

	direct := base
	direct.BPM = 120
	direct.Seed = seed
	want, err := GenerateStochasticPattern(direct)
	require.NoError(t, err)
	assert.Equal(t, want.Events, p.Events)
}

func TestGenerateFromSong_Errors(t *testing.T) {
	t.Run("no fallback", func(t *testing.T) {
		cause := errors.New("lookup timed out")
		_, _, err := GenerateFromSong(context.Background(), &MockResolver{Err: cause}, SongRequest{Title: "x", Params: DefaultParams(0)})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTempoResolution)
		assert.ErrorIs(t, err, cause)

		var tre *TempoResolutionError
		require.ErrorAs(t, err, &tre)
		assert.Equal(t, "x", tre.Title)
	})

	t.Run("nil resolver uses fallback", func(t *testing.T) {
		fallback := 90.0
		_, bpm, err := GenerateFromSong(context.Background(), nil, SongRequest{Title: "x", FallbackBPM: &fallback, Params: DefaultParams(0)})
		require.NoError(t, err)
		assert.Equal(t, 90.0, bpm)
	})

	t.Run("unusable bpm from resolver", func(t *testing.T) {
		_, _, err := GenerateFromSong(context.Background(), &MockResolver{BPM: 0}, SongRequest{Title: "x", Params: DefaultParams(0)})
		assert.ErrorIs(t, err, ErrTempoResolution)
	})

	t.Run("invalid params fail before lookup", func(t *testing.T) {
		resolver := &MockResolver{BPM: 120}
		params := DefaultParams(0)
		params.Swing = 3
		_, _, err := GenerateFromSong(context.Background(), resolver, SongRequest{Title: "x", Params: params})
		assert.ErrorIs(t, err, ErrInvalidParameter)
		assert.Zero(t, resolver.Calls)
	})

	t.Run("invalid fallback", func(t *testing.T) {
		fallback := -1.0
		_, _, err := GenerateFromSong(context.Background(), &MockResolver{BPM: 120}, SongRequest{Title: "x", FallbackBPM: &fallback, Params: DefaultParams(0)})
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestGenerateBatch(t *testing.T) {
	params := DefaultParams(122)
	params.Seed = 10

	patterns, err := GenerateBatch(context.Background(), params, 4)
	require.NoError(t, err)
	require.Len(t, patterns, 4)

	for i, p := range patterns {
		assert.Equal(t, int64(10+i), p.Params.Seed)
		single := params
		single.Seed = int64(10 + i)
		want, err := GenerateStochasticPattern(single)
		require.NoError(t, err)
		assert.Equal(t, want.Events, p.Events)
	}

	_, err = GenerateBatch(context.Background(), params, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
