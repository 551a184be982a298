package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/beatstoch-api/internal/midi"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourFour = pattern.Meter{Numerator: 4, Denominator: 4}

func TestSongFileName(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		artist   string
		bpm      float64
		meter    pattern.Meter
		humanize float64
		want     string
	}{
		{"basic", "Around the World", "Daft Punk", 121, fourFour, 0, "stoch_daft_punk_around_the_world_121bpm_44.mid"},
		{"unknown artist", "One More Time", "", 123, fourFour, 0, "stoch_unknown_one_more_time_123bpm_44.mid"},
		{"punctuation", "Stayin' Alive!!", "Bee Gees", 104, fourFour, 0.2, "stoch_bee_gees_stayin_alive_104bpm_44_humanized.mid"},
		{"fractional bpm truncates", "X", "Y", 123.9, pattern.Meter{Numerator: 6, Denominator: 8}, 0, "stoch_y_x_123bpm_68.mid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SongFileName(tt.title, tt.artist, tt.bpm, tt.meter, tt.humanize))
		})
	}
}

func TestBPMFileName(t *testing.T) {
	assert.Equal(t, "stoch_128bpm_44.mid", BPMFileName(128, fourFour, 0))
	assert.Equal(t, "stoch_90bpm_34_humanized.mid", BPMFileName(90, pattern.Meter{Numerator: 3, Denominator: 4}, 0.5))
	assert.Equal(t, "stoch_128bpm_44_v2.mid", VariationFileName("stoch_128bpm_44.mid", 2))
}

func resetOptions() {
	opts = options{
		bars:            pattern.DefaultBars,
		style:           pattern.DefaultStyle.String(),
		meter:           "4/4",
		stepsPerBeat:    pattern.DefaultStepsPerBeat,
		swing:           pattern.DefaultSwing,
		intensity:       pattern.DefaultIntensity,
		grooveIntensity: pattern.DefaultGrooveIntensity,
		humanize:        pattern.DefaultHumanize,
		seed:            pattern.DefaultSeed,
		variations:      1,
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetOptions()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{120, "120.0"},
		{121.5, "121.5"},
		{0.35, "0.35"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.in))
		})
	}
}

func TestGenerateBPMCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "generate-bpm", "128", "--bars", "2", "--out-dir", dir, "--grid")
	require.NoError(t, err)

	path := filepath.Join(dir, "stoch_128bpm_44.mid")
	assert.Contains(t, out, "Wrote "+path+" (meter=4/4, humanize=0.0)")
	assert.Contains(t, out, "kick")

	file, err := midi.ReadFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 128.0, file.BPM, 0.01)
	assert.NotEmpty(t, file.Hits)
}

func TestGenerateBPMCommand_Variations(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "generate-bpm", "100", "--bars", "1", "--meter", "3/4", "--humanize", "0.4", "--variations", "3", "-o", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Wrote "))

	for i := 1; i <= 3; i++ {
		_, err := os.Stat(filepath.Join(dir, VariationFileName("stoch_100bpm_34_humanized.mid", i)))
		assert.NoError(t, err)
	}
}

func TestGenerateCommand_CatalogSong(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()

	out, err := run(t, "generate", "Around the World", "--artist", "Daft Punk", "--bars", "1", "-o", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "stoch_daft_punk_around_the_world_121bpm_44.mid")
	assert.Contains(t, out, "Wrote "+path+" (BPM=121.0, meter=4/4, humanize=0.0)")

	out, err = run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "BPM=121")
	assert.Contains(t, out, "kick")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad meter", []string{"generate-bpm", "120", "--meter", "4-4", "-o", os.TempDir()}, "meter"},
		{"bad bpm", []string{"generate-bpm", "fast"}, "invalid BPM"},
		{"unknown style", []string{"generate-bpm", "120", "--style", "polka"}, "unknown style"},
		{"swing range", []string{"generate-bpm", "120", "--swing", "2", "-o", os.TempDir()}, "swing"},
		{"missing title", []string{"generate"}, "arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStylesCommand(t *testing.T) {
	out, err := run(t, "styles")
	require.NoError(t, err)
	for _, name := range pattern.StyleNames() {
		assert.Contains(t, out, name)
	}
}
