package midi

import (
	"strings"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
)

// Grid cells. One char per slot: accent, hit, ghost, rest.
const (
	CellAccent = 'X'
	CellHit    = 'x'
	CellGhost  = 'o'
	CellRest   = '-'

	accentVelocity = 100
	softVelocity   = 50
)

// VoiceGrid is one voice's pattern, one string per bar
type VoiceGrid struct {
	Voice string   `json:"voice"`
	Bars  []string `json:"bars"`
}

func cellFor(ev pattern.NoteEvent) byte {
	switch {
	case ev.Origin == pattern.Ghost || ev.Velocity < softVelocity:
		return CellGhost
	case ev.Velocity >= accentVelocity:
		return CellAccent
	default:
		return CellHit
	}
}

// cellRank orders cells so a planned hit wins over a ghost in the same slot
func cellRank(c byte) int {
	switch c {
	case CellAccent:
		return 3
	case CellHit:
		return 2
	case CellGhost:
		return 1
	}
	return 0
}

// Grids renders the pattern as drum grid strings, e.g. "x---x---x---x---"
// for a four-on-the-floor kick bar in 4/4 with four steps per beat.
func Grids(p *pattern.Pattern) []VoiceGrid {
	bars := p.Params.Bars
	if bars < 1 || p.SlotCount < 1 {
		return nil
	}
	perBar := p.SlotCount / bars

	cells := make([][]byte, len(pattern.Voices))
	for i := range cells {
		cells[i] = []byte(strings.Repeat(string(CellRest), p.SlotCount))
	}
	for _, ev := range p.Events {
		if ev.Slot < 0 || ev.Slot >= p.SlotCount {
			continue
		}
		c := cellFor(ev)
		row := cells[ev.Voice]
		if cellRank(c) > cellRank(row[ev.Slot]) {
			row[ev.Slot] = c
		}
	}

	grids := make([]VoiceGrid, 0, len(pattern.Voices))
	for _, v := range pattern.Voices {
		row := cells[v]
		g := VoiceGrid{Voice: v.String(), Bars: make([]string, 0, bars)}
		for b := 0; b < bars; b++ {
			g.Bars = append(g.Bars, string(row[b*perBar:(b+1)*perBar]))
		}
		grids = append(grids, g)
	}
	return grids
}

// CountHits counts the number of hits in a grid string
func CountHits(grid string) int {
	count := 0
	for _, c := range grid {
		if c == CellHit || c == CellAccent || c == CellGhost {
			count++
		}
	}
	return count
}

// FormatGrids lays grids out one voice per line with bars separated by "|"
func FormatGrids(grids []VoiceGrid) string {
	width := 0
	for _, g := range grids {
		width = max(width, len(g.Voice))
	}
	var b strings.Builder
	for _, g := range grids {
		b.WriteString(g.Voice)
		b.WriteString(strings.Repeat(" ", width-len(g.Voice)+1))
		b.WriteString("|")
		b.WriteString(strings.Join(g.Bars, "|"))
		b.WriteString("|\n")
	}
	return b.String()
}
