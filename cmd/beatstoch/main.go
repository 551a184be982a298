package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "beatstoch: %v\n", err)
		os.Exit(2)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatstoch",
	Short: "BPM-aware stochastic drum MIDI generator",
	Long: `beatstoch writes drum patterns as Standard MIDI Files.

Patterns are drawn from per-style trigger probabilities, then shaped by
swing, groove and optional humanization. The same seed always gives the
same file.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		if !opts.verbose {
			log.SetOutput(io.Discard)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate TITLE",
	Short: "Generate from a song title and artist",
	Long: `Look the song's tempo up and generate a pattern at that tempo.

Examples:
  beatstoch generate "Around the World" --artist "Daft Punk"
  beatstoch generate "Unknown Song" --fallback-bpm 124 --style breaks --humanize 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var generateBPMCmd = &cobra.Command{
	Use:   "generate-bpm BPM",
	Short: "Generate with an explicit BPM",
	Long: `Generate a pattern at the given tempo.

Examples:
  beatstoch generate-bpm 128
  beatstoch generate-bpm 174 --style breaks --meter 4/4 --variations 4`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateBPM,
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List supported styles",
	Args:  cobra.NoArgs,
	RunE:  runStyles,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the tempo, meter and drum grid of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

// options collects the flags shared by both generate commands
type options struct {
	artist          string
	fallbackBPM     float64
	bars            int
	style           string
	meter           string
	stepsPerBeat    int
	swing           float64
	intensity       float64
	grooveIntensity float64
	humanize        float64
	seed            int64
	variations      int
	outDir          string
	grid            bool
	verbose         bool
}

var opts options

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(generateBPMCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(inspectCmd)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (tempo lookup, corrections)")

	for _, cmd := range []*cobra.Command{generateCmd, generateBPMCmd} {
		cmd.Flags().IntVar(&opts.bars, "bars", pattern.DefaultBars, "Number of bars")
		cmd.Flags().StringVarP(&opts.style, "style", "s", pattern.DefaultStyle.String(), "Style (house, breaks, generic)")
		cmd.Flags().StringVarP(&opts.meter, "meter", "m", "4/4", "Time signature (e.g. 4/4, 3/4, 6/8)")
		cmd.Flags().IntVar(&opts.stepsPerBeat, "steps-per-beat", pattern.DefaultStepsPerBeat, "Grid steps per beat")
		cmd.Flags().Float64Var(&opts.swing, "swing", pattern.DefaultSwing, "Swing amount (0.0-1.0)")
		cmd.Flags().Float64Var(&opts.intensity, "intensity", pattern.DefaultIntensity, "Pattern density (0.0-1.0)")
		cmd.Flags().Float64Var(&opts.grooveIntensity, "groove-intensity", pattern.DefaultGrooveIntensity, "Psychoacoustic groove intensity (0.0-1.0)")
		cmd.Flags().Float64Var(&opts.humanize, "humanize", pattern.DefaultHumanize, "Humanize amount (0.0-1.0): adds ghost notes and timing variation")
		cmd.Flags().Int64Var(&opts.seed, "seed", pattern.DefaultSeed, "Random seed")
		cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "Output directory (default: MIDI_OUTPUT_DIR or .)")
		cmd.Flags().BoolVar(&opts.grid, "grid", false, "Also print the drum grid")
	}

	generateCmd.Flags().StringVarP(&opts.artist, "artist", "a", "", "Song artist")
	generateCmd.Flags().Float64Var(&opts.fallbackBPM, "fallback-bpm", 0, "BPM to use when the lookup fails")

	generateBPMCmd.Flags().IntVar(&opts.variations, "variations", 1, "Number of variations (seeds seed, seed+1, ...)")
}
