package pattern

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Generation defaults, matching the command-line tool
const (
	DefaultBars            = 8
	DefaultStepsPerBeat    = 4
	DefaultSwing           = 0.10
	DefaultIntensity       = 0.9
	DefaultGrooveIntensity = 0.7
	DefaultHumanize        = 0.0
	DefaultSeed            = int64(42)
)

// Params are the resolved inputs of one generation
type Params struct {
	BPM             float64 `json:"bpm"`
	Bars            int     `json:"bars"`
	Meter           Meter   `json:"meter"`
	StepsPerBeat    int     `json:"steps_per_beat"`
	Swing           float64 `json:"swing"`
	Intensity       float64 `json:"intensity"`
	GrooveIntensity float64 `json:"groove_intensity"`
	Humanize        float64 `json:"humanize"`
	Seed            int64   `json:"seed"`
	Style           Style   `json:"style"`
	Verbose         bool    `json:"-"`
}

// DefaultParams returns the defaults for a tempo
func DefaultParams(bpm float64) Params {
	return Params{
		BPM:             bpm,
		Bars:            DefaultBars,
		Meter:           CommonTime,
		StepsPerBeat:    DefaultStepsPerBeat,
		Swing:           DefaultSwing,
		Intensity:       DefaultIntensity,
		GrooveIntensity: DefaultGrooveIntensity,
		Humanize:        DefaultHumanize,
		Seed:            DefaultSeed,
		Style:           DefaultStyle,
	}
}

// Validate enforces every parameter domain up front so no partial pattern is produced
func (p Params) Validate() error {
	if !(p.BPM > 0) {
		return invalidParam("bpm", p.BPM, "must be > 0")
	}
	if p.Bars < 1 {
		return invalidParam("bars", p.Bars, "must be >= 1")
	}
	if p.StepsPerBeat < 1 {
		return invalidParam("steps_per_beat", p.StepsPerBeat, "must be >= 1")
	}
	if err := p.Meter.Validate(); err != nil {
		return err
	}
	if _, err := slotCount(p.Meter, p.Bars, p.StepsPerBeat); err != nil {
		return err
	}
	for _, unit := range []struct {
		field string
		value float64
	}{
		{"swing", p.Swing},
		{"intensity", p.Intensity},
		{"groove_intensity", p.GrooveIntensity},
		{"humanize", p.Humanize},
	} {
		if err := checkUnit(unit.field, unit.value); err != nil {
			return err
		}
	}
	if p.Style.Profile() == nil {
		return &UnknownStyleError{Name: p.Style.String()}
	}
	return nil
}

// Pattern is the ordered event sequence of one generation plus its timing facts
type Pattern struct {
	Params       Params      `json:"params"`
	Events       []NoteEvent `json:"events"`
	SlotCount    int         `json:"slot_count"`
	SlotDuration float64     `json:"slot_duration"`
	Duration     float64     `json:"duration"`
	Diagnostics  Diagnostics `json:"diagnostics"`
}

// CountByVoice tallies events per voice, optionally restricted to one origin
func (p *Pattern) CountByVoice(origin *Origin) map[Voice]int {
	counts := make(map[Voice]int, numVoices)
	for _, ev := range p.Events {
		if origin != nil && ev.Origin != *origin {
			continue
		}
		counts[ev.Voice]++
	}
	return counts
}

// GenerationContext is the single mutable unit of one run: the seeded random
// source, the resolved parameters and the events emitted so far. It is never shared.
type GenerationContext struct {
	params  Params
	rng     *rand.Rand
	grid    *Grid
	profile *StyleProfile
	events  []NoteEvent
	diag    Diagnostics
}

// NewGenerationContext validates params, builds the grid and seeds a private random source
func NewGenerationContext(params Params) (*GenerationContext, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid, err := BuildGrid(params.BPM, params.Meter, params.Bars, params.StepsPerBeat)
	if err != nil {
		return nil, err
	}
	seed := uint64(params.Seed)
	return &GenerationContext{
		params:  params,
		rng:     rand.New(rand.NewPCG(seed, seed)),
		grid:    grid,
		profile: params.Style.Profile(),
	}, nil
}

// Grid exposes the slot grid of the run
func (gc *GenerationContext) Grid() *Grid {
	return gc.grid
}

// Run executes trigger, timing, humanize and assembly in order on the context's random stream
func (gc *GenerationContext) Run() (*Pattern, error) {
	planned, err := Trigger(gc.grid, gc.profile, gc.params.Intensity, gc.rng)
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}
	gc.events = planned

	timed, err := applyTiming(gc.grid, gc.events, gc.params.Swing, gc.params.GrooveIntensity, gc.rng, &gc.diag)
	if err != nil {
		return nil, fmt.Errorf("timing: %w", err)
	}
	gc.events = timed

	humanized, err := humanize(gc.grid, gc.profile, gc.events, gc.params.Humanize, gc.rng, &gc.diag)
	if err != nil {
		return nil, fmt.Errorf("humanize: %w", err)
	}
	gc.events = humanized

	ordered, dropped := Assemble(gc.events, gc.grid.Duration)
	gc.events = ordered
	gc.diag.Dropped = dropped

	if gc.params.Verbose && (gc.diag.Clamps > 0 || len(dropped) > 0) {
		logger.Debug("Pattern corrections applied", logger.Fields{
			"style":   gc.params.Style.String(),
			"seed":    gc.params.Seed,
			"clamps":  gc.diag.Clamps,
			"dropped": len(dropped),
		})
	}

	return &Pattern{
		Params:       gc.params,
		Events:       gc.events,
		SlotCount:    len(gc.grid.Slots),
		SlotDuration: gc.grid.SlotDuration,
		Duration:     gc.grid.Duration,
		Diagnostics:  gc.diag,
	}, nil
}

// GenerateStochasticPattern produces the ordered events for the given parameters.
// The result is a pure function of params, seed included.
func GenerateStochasticPattern(params Params) (*Pattern, error) {
	gc, err := NewGenerationContext(params)
	if err != nil {
		return nil, err
	}
	return gc.Run()
}

// TempoResolver looks a song's tempo up by title and optional artist
type TempoResolver interface {
	Resolve(ctx context.Context, title, artist string) (float64, error)
}

// SongRequest describes a generation driven by a song lookup
type SongRequest struct {
	Title       string
	Artist      string
	FallbackBPM *float64
	Seed        *int64 // nil means DefaultSeed
	Params      Params // BPM and Seed are taken from the lookup and the field above
}

var errNoResolver = errors.New("no tempo resolver configured")

// GenerateFromSong resolves the song's BPM, falling back to FallbackBPM when the
// lookup fails, then generates the pattern. It returns the BPM actually used.
func GenerateFromSong(ctx context.Context, resolver TempoResolver, req SongRequest) (*Pattern, float64, error) {
	params := req.Params
	params.Seed = DefaultSeed
	if req.Seed != nil {
		params.Seed = *req.Seed
	}
	// Validate everything but the tempo before spending a lookup
	params.BPM = 1
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	if req.FallbackBPM != nil && !(*req.FallbackBPM > 0) {
		return nil, 0, invalidParam("fallback_bpm", *req.FallbackBPM, "must be > 0")
	}

	bpm, err := resolveTempo(ctx, resolver, req.Title, req.Artist)
	if err != nil {
		if req.FallbackBPM == nil {
			return nil, 0, &TempoResolutionError{Title: req.Title, Artist: req.Artist, Cause: err}
		}
		if params.Verbose {
			logger.Info("Tempo lookup failed, using fallback BPM", logger.Fields{
				"title":        req.Title,
				"artist":       req.Artist,
				"fallback_bpm": *req.FallbackBPM,
				"error":        err.Error(),
			})
		}
		bpm = *req.FallbackBPM
	} else if params.Verbose {
		logger.Info("Tempo resolved", logger.Fields{"title": req.Title, "artist": req.Artist, "bpm": bpm})
	}

	params.BPM = bpm
	p, err := GenerateStochasticPattern(params)
	if err != nil {
		return nil, 0, err
	}
	return p, bpm, nil
}

func resolveTempo(ctx context.Context, resolver TempoResolver, title, artist string) (float64, error) {
	if resolver == nil {
		return 0, errNoResolver
	}
	bpm, err := resolver.Resolve(ctx, title, artist)
	if err != nil {
		return 0, err
	}
	if !(bpm > 0) {
		return 0, fmt.Errorf("resolver returned unusable bpm %v", bpm)
	}
	return bpm, nil
}

// GenerateBatch generates count variations with seeds params.Seed, params.Seed+1, ...
// Each variation runs on its own goroutine with its own random source; results
// come back in seed order.
func GenerateBatch(ctx context.Context, params Params, count int) ([]*Pattern, error) {
	if count < 1 {
		return nil, invalidParam("count", count, "must be >= 1")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Pattern, count)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		variation := params
		variation.Seed = params.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := GenerateStochasticPattern(variation)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
