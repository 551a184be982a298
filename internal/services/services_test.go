package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Conceptual-Machines/beatstoch-api/internal/config"
	"github.com/Conceptual-Machines/beatstoch-api/internal/database"
	"github.com/Conceptual-Machines/beatstoch-api/internal/midi"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/Conceptual-Machines/beatstoch-api/internal/tempo"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockResolver is a mock tempo resolver for testing
type MockResolver struct {
	BPM   float64
	Err   error
	Calls int
}

func (m *MockResolver) Resolve(_ context.Context, _, _ string) (float64, error) {
	m.Calls++
	return m.BPM, m.Err
}

type recordingMetrics struct {
	generations []bool
	lookups     []bool
}

func (r *recordingMetrics) RecordAPIRequest(context.Context, string, int, time.Duration) {}

func (r *recordingMetrics) RecordGeneration(_ context.Context, _ string, _ int, _ time.Duration, success bool) {
	r.generations = append(r.generations, success)
}

func (r *recordingMetrics) RecordTempoLookup(_ context.Context, found bool, _ time.Duration) {
	r.lookups = append(r.lookups, found)
}

func shortParams(bpm float64) pattern.Params {
	p := pattern.DefaultParams(bpm)
	p.Bars = 2
	return p
}

func TestPatternService_GenerateWithoutDatabase(t *testing.T) {
	rec := &recordingMetrics{}
	svc := NewPatternService(nil, nil, rec)
	assert.False(t, svc.PersistenceEnabled())

	g, err := svc.Generate(context.Background(), shortParams(128), "user-1")
	require.NoError(t, err)
	assert.Empty(t, g.ID)
	assert.Equal(t, 128.0, g.BPMUsed)
	assert.NotEmpty(t, g.Pattern.Events)
	assert.Equal(t, []bool{true}, rec.generations)

	bad := shortParams(0)
	_, err = svc.Generate(context.Background(), bad, "")
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)
	assert.Equal(t, []bool{true, false}, rec.generations)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
}

func TestPatternService_FromSong(t *testing.T) {
	rec := &recordingMetrics{}
	resolver := &MockResolver{BPM: 121}
	svc := NewPatternService(nil, resolver, rec)

	g, err := svc.FromSong(context.Background(), pattern.SongRequest{
		Title:  "Around the World",
		Artist: "Daft Punk",
		Params: shortParams(0),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 121.0, g.BPMUsed)
	assert.Equal(t, 1, resolver.Calls)
	assert.Equal(t, []bool{true}, rec.lookups)

	resolver.Err = tempo.ErrNotFound
	_, err = svc.FromSong(context.Background(), pattern.SongRequest{Title: "Unknown", Params: shortParams(0)}, "")
	assert.ErrorIs(t, err, pattern.ErrTempoResolution)
	assert.ErrorIs(t, err, tempo.ErrNotFound)
	assert.Equal(t, []bool{true, false}, rec.lookups)
}

func TestPatternService_FromSongWithoutResolver(t *testing.T) {
	svc := NewPatternService(nil, nil, nil)
	fallback := 100.0
	g, err := svc.FromSong(context.Background(), pattern.SongRequest{
		Title:       "Anything",
		FallbackBPM: &fallback,
		Params:      shortParams(0),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 100.0, g.BPMUsed)
}

func TestPatternService_ResponseAndMIDI(t *testing.T) {
	svc := NewPatternService(nil, nil, nil)
	params := shortParams(124)
	params.Humanize = 0.4
	g, err := svc.Generate(context.Background(), params, "")
	require.NoError(t, err)

	resp := svc.Response(g)
	assert.Equal(t, len(g.Pattern.Events), resp.EventCount)
	assert.Equal(t, 32, resp.SlotCount)
	require.Contains(t, resp.Grids, "kick")
	assert.Len(t, resp.Grids["kick"], 2)
	assert.Len(t, resp.Grids["kick"][0], 16)

	data, err := svc.MIDI(g)
	require.NoError(t, err)
	file, err := midi.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.InDelta(t, 124.0, file.BPM, 0.01)
	assert.Len(t, file.Hits, len(g.Pattern.Events))

	assert.Equal(t, "stoch_house_124bpm_44_humanized.mid", svc.FileName(g))
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}
	db, err := database.Connect(url)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPatternService_ArchiveRoundTrip(t *testing.T) {
	db := testDB(t)
	svc := NewPatternService(db, &MockResolver{BPM: 117}, nil)
	ctx := context.Background()

	g, err := svc.FromSong(ctx, pattern.SongRequest{Title: "Billie Jean", Artist: "Michael Jackson", Params: shortParams(0)}, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)

	back, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Pattern.Events, back.Pattern.Events)
	assert.Equal(t, 117.0, back.BPMUsed)

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrPatternNotFound)
	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestTempoStore(t *testing.T) {
	db := testDB(t)
	store := NewTempoStore(db)
	ctx := context.Background()
	key := tempo.Key("Test Song "+uuid.NewString(), "Test Artist")

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Put(ctx, key, tempo.Entry{BPM: 120, Source: "llm", UpdatedAt: now}))
	require.NoError(t, store.Put(ctx, key, tempo.Entry{BPM: 122, Source: "llm", UpdatedAt: now}))

	entry, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 122.0, entry.BPM)
	assert.True(t, now.Equal(entry.UpdatedAt))
}

func TestTimedResolver_PassesErrorsThrough(t *testing.T) {
	rec := &recordingMetrics{}
	boom := errors.New("boom")
	r := timedResolver{next: &MockResolver{Err: boom}, metrics: rec}
	_, err := r.Resolve(context.Background(), "x", "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []bool{false}, rec.lookups)
}

func TestNewTempoResolver_CatalogOnlyWithoutKeys(t *testing.T) {
	r := NewTempoResolver(context.Background(), &config.Config{}, nil, nil)

	bpm, err := r.Resolve(context.Background(), "One More Time", "Daft Punk")
	require.NoError(t, err)
	assert.Equal(t, 123.0, bpm)

	_, err = r.Resolve(context.Background(), "Not In The Catalog", "")
	assert.ErrorIs(t, err, tempo.ErrNotFound)
}

func TestNewTempoResolver_UnknownProviderFallsBackToCatalog(t *testing.T) {
	cfg := &config.Config{OpenAIAPIKey: "sk-test", TempoProvider: "nope"}
	r := NewTempoResolver(context.Background(), cfg, nil, nil)
	chain, ok := r.(tempo.ChainResolver)
	require.True(t, ok)
	assert.Len(t, chain, 1)
}

// captureSentry binds a client that hands every event to the returned slice
func captureSentry(t *testing.T) *[]*sentry.Event {
	t.Helper()
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })
	return &events
}

func TestPatternService_ReportsDroppedEvents(t *testing.T) {
	events := captureSentry(t)
	svc := NewPatternService(nil, nil, &recordingMetrics{})

	p := &pattern.Pattern{Params: shortParams(120)}
	svc.record(context.Background(), pattern.StyleHouse, p, time.Millisecond, nil)
	assert.Empty(t, *events)

	p.Diagnostics.Dropped = []pattern.NoteEvent{{Voice: pattern.Kick}, {Voice: pattern.Snare}}
	svc.record(context.Background(), pattern.StyleHouse, p, time.Millisecond, nil)
	require.Len(t, *events, 1)
	event := (*events)[0]
	assert.Equal(t, sentry.LevelWarning, event.Level)
	assert.Equal(t, "Pattern events dropped past the end", event.Message)
	assert.Equal(t, "house", event.Tags["style"])
	assert.Equal(t, 2, event.Contexts["dropped"]["value"])

	svc.record(context.Background(), pattern.StyleHouse, p, time.Millisecond, errors.New("boom"))
	assert.Len(t, *events, 1)
}
