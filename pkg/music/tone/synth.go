package tone

import (
	"math"
	"slices"

	"github.com/zurustar/musicdec/pkg/music"
)

// SampleRate is the output rate in Hz.
const SampleRate = 44100

// sampleStep is the duration of one sample in milliseconds.
const sampleStep = 1000.0 / SampleRate

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithTuning selects the frequency table.
func WithTuning(t Tuning) Option {
	return func(s *Synthesizer) {
		s.table = TableFor(t)
	}
}

// WithTempo sets the tempo used to convert tick durations, in microseconds
// per quarter note.
func WithTempo(usPerQuarter int) Option {
	return func(s *Synthesizer) {
		s.tempo = usPerQuarter
	}
}

// Synthesizer appends one sine tone per note to a single mono stream. Notes
// are concatenated, never mixed. A Synthesizer is not safe for concurrent use.
type Synthesizer struct {
	table   *Table
	tempo   int
	samples []int16
}

// NewSynthesizer returns a synthesizer using the legacy table and the
// default tempo.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		table: TableFor(Legacy),
		tempo: music.DefaultTempo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTempo changes the tempo used by later AddNote calls.
func (s *Synthesizer) SetTempo(usPerQuarter int) {
	s.tempo = usPerQuarter
}

// AddNote appends a note lasting ticks XMI ticks at the current tempo.
func (s *Synthesizer) AddNote(note uint8, ticks int) {
	s.AddNoteMs(note, music.TicksToMs(ticks, s.tempo))
}

// AddNoteMs appends a note lasting ms milliseconds.
func (s *Synthesizer) AddNoteMs(note uint8, ms float64) {
	n := SampleCount(ms)
	if n <= 0 {
		return
	}
	freq := s.table.Frequency(note)
	s.samples = slices.Grow(s.samples, n)
	for i := 0; i < n; i++ {
		t := float64(i) * sampleStep
		s.samples = append(s.samples, int16(math.Round(math.Sin(2*math.Pi*freq*t/1000)*32767)))
	}
}

// Len returns the number of samples rendered so far.
func (s *Synthesizer) Len() int {
	return len(s.samples)
}

// Samples returns a copy of the rendered stream.
func (s *Synthesizer) Samples() []int16 {
	return slices.Clone(s.samples)
}

// Reset discards the rendered samples. The tempo is kept.
func (s *Synthesizer) Reset() {
	s.samples = s.samples[:0]
}

// SampleCount returns the number of samples covering ms milliseconds.
func SampleCount(ms float64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Round(ms / sampleStep))
}

// notePair is a PlayNote matched with the StopNote that ends it.
type notePair struct {
	start, end float64
	note       uint8
}

// Render synthesizes every note of the timeline, one after another in order
// of their start times. A PlayNote is ended by the next StopNote with the
// same channel and note; a note that is never stopped lasts until the end of
// the timeline. SetInstrument events are ignored.
func Render(tl *music.Timeline, opts ...Option) []int16 {
	s := NewSynthesizer(opts...)
	for _, p := range pairNotes(tl) {
		s.AddNoteMs(p.note, p.end-p.start)
	}
	return s.samples
}

func pairNotes(tl *music.Timeline) []notePair {
	type key struct{ channel, note uint8 }
	open := make(map[key][]int)
	var pairs []notePair

	for _, e := range tl.All() {
		switch ev := e.(type) {
		case music.PlayNote:
			k := key{ev.Channel, ev.Note}
			open[k] = append(open[k], len(pairs))
			pairs = append(pairs, notePair{start: ev.Start, end: -1, note: ev.Note})
		case music.StopNote:
			k := key{ev.Channel, ev.Note}
			if q := open[k]; len(q) > 0 {
				pairs[q[0]].end = ev.Start
				open[k] = q[1:]
			}
		case music.SetInstrument:
		}
	}

	end := tl.Duration()
	for i := range pairs {
		if pairs[i].end < 0 {
			pairs[i].end = end
		}
	}
	return pairs
}
