package pattern

import (
	"cmp"
	"slices"
)

// Assemble merges events from every voice into one sequence ordered by time, then
// canonical voice order, then planned before ghost. Events outside [0, duration]
// are dropped and returned separately.
func Assemble(events []NoteEvent, duration float64) (ordered, dropped []NoteEvent) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, compareEvents)

	ordered = make([]NoteEvent, 0, len(sorted))
	for _, ev := range sorted {
		if !(ev.Time >= 0 && ev.Time <= duration) {
			dropped = append(dropped, ev)
			continue
		}
		ordered = append(ordered, ev)
	}
	return ordered, dropped
}

func compareEvents(a, b NoteEvent) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Voice, b.Voice); c != 0 {
		return c
	}
	return cmp.Compare(a.Origin, b.Origin)
}
