package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
	"github.com/Conceptual-Machines/beatstoch-api/internal/metrics"
	"github.com/Conceptual-Machines/beatstoch-api/internal/midi"
	"github.com/Conceptual-Machines/beatstoch-api/internal/models"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrPatternNotFound is returned when no archived pattern has the id
	ErrPatternNotFound = errors.New("pattern not found")
	// ErrPersistenceDisabled is returned by archive reads when no database is configured
	ErrPersistenceDisabled = errors.New("pattern persistence is disabled")
)

// GeneratedPattern is a pattern plus the id it was archived under, if any
type GeneratedPattern struct {
	ID      string
	BPMUsed float64
	Pattern *pattern.Pattern
}

// PatternService generates patterns, archives their parameters and renders them
type PatternService struct {
	db       *gorm.DB
	resolver pattern.TempoResolver
	metrics  metrics.Recorder
}

// NewPatternService creates the service. db may be nil to disable the archive.
func NewPatternService(db *gorm.DB, resolver pattern.TempoResolver, recorder metrics.Recorder) *PatternService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &PatternService{db: db, resolver: resolver, metrics: recorder}
}

// PersistenceEnabled reports whether patterns are archived
func (s *PatternService) PersistenceEnabled() bool {
	return s.db != nil
}

// Generate runs the engine for params and archives the result under owner
func (s *PatternService) Generate(ctx context.Context, params pattern.Params, owner string) (*GeneratedPattern, error) {
	start := time.Now()
	p, err := pattern.GenerateStochasticPattern(params)
	s.record(ctx, params.Style, p, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result := &GeneratedPattern{BPMUsed: params.BPM, Pattern: p}
	if err := s.archive(ctx, result, owner, "", ""); err != nil {
		return nil, err
	}
	return result, nil
}

// FromSong resolves the song tempo, generates and archives
func (s *PatternService) FromSong(ctx context.Context, req pattern.SongRequest, owner string) (*GeneratedPattern, error) {
	start := time.Now()
	p, bpm, err := pattern.GenerateFromSong(ctx, s.timedResolver(), req)
	s.record(ctx, req.Params.Style, p, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result := &GeneratedPattern{BPMUsed: bpm, Pattern: p}
	if err := s.archive(ctx, result, owner, req.Title, req.Artist); err != nil {
		return nil, err
	}
	return result, nil
}

// Get rebuilds an archived pattern from its stored parameters
func (s *PatternService) Get(ctx context.Context, id string) (*GeneratedPattern, error) {
	if s.db == nil {
		return nil, ErrPersistenceDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPatternNotFound
	}

	var record models.PatternRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to load pattern %s: %w", id, err)
	}

	params, err := record.Params()
	if err != nil {
		return nil, fmt.Errorf("stored pattern %s is unreadable: %w", id, err)
	}
	p, err := pattern.GenerateStochasticPattern(params)
	if err != nil {
		return nil, fmt.Errorf("stored pattern %s no longer generates: %w", id, err)
	}
	return &GeneratedPattern{ID: record.ID, BPMUsed: params.BPM, Pattern: p}, nil
}

// Response renders a generated pattern for the API
func (s *PatternService) Response(g *GeneratedPattern) models.PatternResponse {
	p := g.Pattern
	grids := make(map[string][]string, len(pattern.Voices))
	for _, vg := range midi.Grids(p) {
		grids[vg.Voice] = vg.Bars
	}
	return models.PatternResponse{
		ID:           g.ID,
		BPMUsed:      g.BPMUsed,
		Params:       p.Params,
		SlotCount:    p.SlotCount,
		SlotDuration: p.SlotDuration,
		Duration:     p.Duration,
		EventCount:   len(p.Events),
		Events:       p.Events,
		Grids:        grids,
		Dropped:      len(p.Diagnostics.Dropped),
		Clamps:       p.Diagnostics.Clamps,
	}
}

// MIDI encodes the pattern as a Standard MIDI File
func (s *PatternService) MIDI(g *GeneratedPattern) ([]byte, error) {
	return midi.Bytes(g.Pattern)
}

// FileName is the download name of the pattern's MIDI file
func (s *PatternService) FileName(g *GeneratedPattern) string {
	p := g.Pattern.Params
	name := fmt.Sprintf("stoch_%s_%dbpm_%d%d", p.Style, int(g.BPMUsed), p.Meter.Numerator, p.Meter.Denominator)
	if p.Humanize > 0 {
		name += "_humanized"
	}
	return name + ".mid"
}

func (s *PatternService) archive(ctx context.Context, g *GeneratedPattern, owner, title, artist string) error {
	if s.db == nil {
		return nil
	}
	record := models.NewPatternRecord(uuid.NewString(), g.Pattern)
	record.Owner = owner
	record.Title = title
	record.Artist = artist
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		logger.Error("Failed to archive pattern", err, logger.Fields{"style": record.Style, "seed": record.Seed})
		return fmt.Errorf("failed to archive pattern: %w", err)
	}
	g.ID = record.ID
	return nil
}

func (s *PatternService) record(ctx context.Context, style pattern.Style, p *pattern.Pattern, elapsed time.Duration, err error) {
	events := 0
	if p != nil {
		events = len(p.Events)
	}
	s.metrics.RecordGeneration(ctx, style.String(), events, elapsed, err == nil)
	if err != nil {
		return
	}
	logger.LogPatternGeneration(ctx, style.String(), elapsed, events, logger.Fields{"seed": p.Params.Seed, "bpm": p.Params.BPM})
	if dropped := len(p.Diagnostics.Dropped); dropped > 0 {
		logger.LogToSentry(sentry.LevelWarning, "Pattern events dropped past the end", logger.Fields{
			"style":   style.String(),
			"seed":    p.Params.Seed,
			"bpm":     p.Params.BPM,
			"dropped": dropped,
		})
	}
}

// timedResolver reports lookup latency; a nil resolver stays nil so the engine
// reports the missing collaborator itself
func (s *PatternService) timedResolver() pattern.TempoResolver {
	if s.resolver == nil {
		return nil
	}
	return timedResolver{next: s.resolver, metrics: s.metrics}
}

type timedResolver struct {
	next    pattern.TempoResolver
	metrics metrics.Recorder
}

func (t timedResolver) Resolve(ctx context.Context, title, artist string) (float64, error) {
	start := time.Now()
	bpm, err := t.next.Resolve(ctx, title, artist)
	t.metrics.RecordTempoLookup(ctx, err == nil, time.Since(start))
	return bpm, err
}
