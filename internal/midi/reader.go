package midi

import (
	"fmt"
	"io"
	"os"

	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Hit is one note-on read back from a file
type Hit struct {
	Tick     uint32        `json:"tick"`
	Time     float64       `json:"time"`
	Key      uint8         `json:"key"`
	Velocity uint8         `json:"velocity"`
	Voice    pattern.Voice `json:"voice"`
	Known    bool          `json:"known"` // Key maps to one of the pattern voices
}

// File summarises a drum MIDI file
type File struct {
	BPM        float64       `json:"bpm"`
	Meter      pattern.Meter `json:"meter"`
	Resolution uint16        `json:"resolution"`
	Hits       []Hit         `json:"hits"`
}

// CountByVoice tallies known hits per voice
func (f *File) CountByVoice() map[pattern.Voice]int {
	counts := make(map[pattern.Voice]int)
	for _, h := range f.Hits {
		if h.Known {
			counts[h.Voice]++
		}
	}
	return counts
}

var keyVoices = func() map[uint8]pattern.Voice {
	m := make(map[uint8]pattern.Voice)
	for _, v := range pattern.Voices {
		m[v.MIDIKey()] = v
	}
	return m
}()

// Decode reads a Standard MIDI File and collects drum-channel note-ons
func Decode(r io.Reader) (*File, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI: %w", err)
	}
	return summarise(sm)
}

// ReadFile decodes the MIDI file at path
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func summarise(sm *smf.SMF) (*File, error) {
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", sm.TimeFormat)
	}

	out := &File{BPM: 120, Meter: pattern.CommonTime, Resolution: ticks.Resolution()}
	if changes := sm.TempoChanges(); len(changes) > 0 {
		out.BPM = changes[0].BPM
	}

	for _, track := range sm.Tracks {
		var abs uint32
		for _, ev := range track {
			abs += ev.Delta

			var num, den uint8
			if ev.Message.GetMetaMeter(&num, &den) {
				out.Meter = pattern.Meter{Numerator: int(num), Denominator: int(den)}
				continue
			}

			var ch, key, vel uint8
			if !gomidi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) || ch != DrumChannel {
				continue
			}
			voice, known := keyVoices[key]
			out.Hits = append(out.Hits, Hit{
				Tick:     abs,
				Time:     float64(abs) / float64(out.Resolution) * 60 / out.BPM,
				Key:      key,
				Velocity: vel,
				Voice:    voice,
				Known:    known,
			})
		}
	}
	return out, nil
}
