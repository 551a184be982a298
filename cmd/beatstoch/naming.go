package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// safeName lower-cases s and collapses every run of non-alphanumerics to "_"
func safeName(s string) string {
	return strings.ToLower(strings.Trim(unsafeChars.ReplaceAllString(s, "_"), "_"))
}

func fileSuffix(bpm float64, meter pattern.Meter, humanize float64) string {
	suffix := fmt.Sprintf("%dbpm_%d%d", int(bpm), meter.Numerator, meter.Denominator)
	if humanize > 0 {
		suffix += "_humanized"
	}
	return suffix + ".mid"
}

// SongFileName names the output of "generate", e.g. stoch_daft_punk_around_the_world_121bpm_44.mid
func SongFileName(title, artist string, bpm float64, meter pattern.Meter, humanize float64) string {
	safeArtist := "unknown"
	if artist != "" {
		safeArtist = safeName(artist)
	}
	return fmt.Sprintf("stoch_%s_%s_%s", safeArtist, safeName(title), fileSuffix(bpm, meter, humanize))
}

// BPMFileName names the output of "generate-bpm", e.g. stoch_128bpm_44.mid
func BPMFileName(bpm float64, meter pattern.Meter, humanize float64) string {
	return "stoch_" + fileSuffix(bpm, meter, humanize)
}

// VariationFileName inserts a 1-based variation number before the extension
func VariationFileName(name string, n int) string {
	return fmt.Sprintf("%s_v%d.mid", strings.TrimSuffix(name, ".mid"), n)
}
