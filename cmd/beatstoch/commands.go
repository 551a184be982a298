package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Conceptual-Machines/beatstoch-api/internal/config"
	"github.com/Conceptual-Machines/beatstoch-api/internal/midi"
	"github.com/Conceptual-Machines/beatstoch-api/internal/observability"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/Conceptual-Machines/beatstoch-api/internal/services"
	"github.com/spf13/cobra"
)

// params builds generation parameters from the shared flags
func (o *options) params(bpm float64) (pattern.Params, error) {
	p := pattern.DefaultParams(bpm)

	style, err := pattern.ParseStyle(o.style)
	if err != nil {
		return p, err
	}
	meter, err := pattern.ParseMeter(o.meter)
	if err != nil {
		return p, err
	}

	p.Bars = o.bars
	p.Style = style
	p.Meter = meter
	p.StepsPerBeat = o.stepsPerBeat
	p.Swing = o.swing
	p.Intensity = o.intensity
	p.GrooveIntensity = o.grooveIntensity
	p.Humanize = o.humanize
	p.Seed = o.seed
	p.Verbose = o.verbose
	return p, nil
}

func (o *options) outputDir(cfg *config.Config) string {
	if o.outDir != "" {
		return o.outDir
	}
	return cfg.MIDIOutputDir
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	params, err := opts.params(0)
	if err != nil {
		return err
	}

	req := pattern.SongRequest{
		Title:  args[0],
		Artist: opts.artist,
		Seed:   &opts.seed,
		Params: params,
	}
	if cmd.Flags().Changed("fallback-bpm") {
		req.FallbackBPM = &opts.fallbackBPM
	}

	ctx := context.Background()
	tracing := observability.InitializeLangfuse(ctx, cfg)
	defer tracing.Flush(ctx)
	resolver := services.NewTempoResolver(ctx, cfg, nil, tracing)

	p, bpm, err := pattern.GenerateFromSong(ctx, resolver, req)
	if err != nil {
		return err
	}

	path := filepath.Join(opts.outputDir(cfg), SongFileName(req.Title, req.Artist, bpm, params.Meter, params.Humanize))
	if err := midi.WriteFile(path, p); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (BPM=%s, meter=%s, humanize=%s)\n",
		path, formatFloat(bpm), params.Meter, formatFloat(params.Humanize))
	printGrid(cmd, p)
	return nil
}

func runGenerateBPM(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	bpm, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid BPM %q", args[0])
	}
	params, err := opts.params(bpm)
	if err != nil {
		return err
	}

	patterns, err := pattern.GenerateBatch(context.Background(), params, opts.variations)
	if err != nil {
		return err
	}

	for i, p := range patterns {
		name := BPMFileName(bpm, params.Meter, params.Humanize)
		if len(patterns) > 1 {
			name = VariationFileName(name, i+1)
		}
		path := filepath.Join(opts.outputDir(cfg), name)
		if err := midi.WriteFile(path, p); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (meter=%s, humanize=%s)\n",
			path, params.Meter, formatFloat(params.Humanize))
		printGrid(cmd, p)
	}
	return nil
}

func runStyles(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, name := range pattern.StyleNames() {
		profile, err := pattern.ProfileFor(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-8s", name)
		for _, v := range pattern.Voices {
			fmt.Fprintf(out, " %s=%.1f", v, profile.Density(v))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	file, err := midi.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: BPM=%.2f, meter=%s, %d hits\n", args[0], file.BPM, file.Meter, len(file.Hits))

	counts := file.CountByVoice()
	voices := make([]pattern.Voice, 0, len(counts))
	for v := range counts {
		voices = append(voices, v)
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i] < voices[j] })
	for _, v := range voices {
		fmt.Fprintf(out, "  %-10s %d\n", v, counts[v])
	}
	return nil
}

func printGrid(cmd *cobra.Command, p *pattern.Pattern) {
	if !opts.grid {
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), midi.FormatGrids(midi.Grids(p)))
}

// formatFloat keeps at least one decimal, so 120 prints as 120.0
func formatFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
