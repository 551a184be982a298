package midi

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// TicksPerQuarter is the file resolution
	TicksPerQuarter = 960
	// DrumChannel is General MIDI channel 10, zero-based
	DrumChannel = 9

	trackName = "beatstoch drums"
)

// message is one channel message at an absolute tick
type message struct {
	tick uint32
	off  bool
	key  uint8
	vel  uint8
	seq  int // index of the source event
}

// secondsToTicks converts a time in seconds to quarter-note ticks at bpm
func secondsToTicks(seconds, bpm float64) uint32 {
	t := math.Round(seconds * bpm / 60 * TicksPerQuarter)
	if t < 0 {
		return 0
	}
	return uint32(t)
}

// noteMessages converts events to sorted note-on/note-off pairs. A note is
// cut short rather than overlap the next hit of the same voice.
func noteMessages(events []pattern.NoteEvent, bpm float64) []message {
	type note struct {
		on, off uint32
		key     uint8
		vel     uint8
		seq     int
	}
	byKey := make(map[uint8][]note)
	for i, ev := range events {
		on := secondsToTicks(ev.Time, bpm)
		length := max(secondsToTicks(ev.DurationHint, bpm), 1)
		key := ev.Voice.MIDIKey()
		byKey[key] = append(byKey[key], note{on: on, off: on + length, key: key, vel: uint8(pattern.ClampVelocity(ev.Velocity)), seq: i})
	}

	var msgs []message
	for _, notes := range byKey {
		slices.SortStableFunc(notes, func(a, b note) int { return cmp.Compare(a.on, b.on) })
		for i, n := range notes {
			if i+1 < len(notes) && notes[i+1].on < n.off {
				n.off = max(notes[i+1].on, n.on+1)
			}
			msgs = append(msgs,
				message{tick: n.on, key: n.key, vel: n.vel, seq: n.seq},
				message{tick: n.off, off: true, key: n.key, seq: n.seq},
			)
		}
	}

	// Offs release before ons at the same tick; otherwise keep event order
	slices.SortStableFunc(msgs, func(a, b message) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		if a.off != b.off {
			if a.off {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return msgs
}

// Build renders a pattern as a format 1 Standard MIDI File: a tempo track
// carrying meter and tempo, and one drum track on channel 10.
func Build(p *pattern.Pattern) (*smf.SMF, error) {
	if p == nil {
		return nil, fmt.Errorf("nil pattern")
	}
	meter := p.Params.Meter
	if err := meter.Validate(); err != nil {
		return nil, err
	}
	// the time signature meta event stores the numerator in one byte
	if meter.Numerator > math.MaxUint8 {
		return nil, &pattern.InvalidParameterError{
			Field:  "meter",
			Value:  meter.String(),
			Reason: "numerator must be <= 255 in a MIDI file",
		}
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName("tempo"))
	tempo.Add(0, smf.MetaMeter(uint8(meter.Numerator), uint8(meter.Denominator)))
	tempo.Add(0, smf.MetaTempo(p.Params.BPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	var drums smf.Track
	drums.Add(0, smf.MetaTrackSequenceName(trackName))
	var last uint32
	for _, m := range noteMessages(p.Events, p.Params.BPM) {
		delta := m.tick - last
		last = m.tick
		if m.off {
			drums.Add(delta, gomidi.NoteOff(DrumChannel, m.key))
		} else {
			drums.Add(delta, gomidi.NoteOn(DrumChannel, m.key, m.vel))
		}
	}
	end := secondsToTicks(p.Duration, p.Params.BPM)
	var tail uint32
	if end > last {
		tail = end - last
	}
	drums.Close(tail)
	if err := sm.Add(drums); err != nil {
		return nil, fmt.Errorf("error adding drum track: %w", err)
	}

	return sm, nil
}

// Encode writes the pattern as a MIDI file to w
func Encode(w io.Writer, p *pattern.Pattern) error {
	sm, err := Build(p)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI: %w", err)
	}
	return nil
}

// Bytes returns the encoded MIDI file
func Bytes(p *pattern.Pattern) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the pattern to path
func WriteFile(path string, p *pattern.Pattern) error {
	sm, err := Build(p)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
