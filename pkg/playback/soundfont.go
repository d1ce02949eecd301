package playback

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"github.com/zurustar/musicdec/pkg/fileutil"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/gm"
	"github.com/zurustar/musicdec/pkg/music/tone"
)

// SampleRate is the rate of every PCM stream produced by this package.
const SampleRate = tone.SampleRate

// DefaultTail is how long rendering continues after the last event so that
// released notes can decay.
const DefaultTail = 1000.0 // ms

// LoadSoundFont reads and parses an SF2 file. A nil fsys reads from the real
// file system.
func LoadSoundFont(fsys fileutil.FileSystem, path string) (*meltysynth.SoundFont, error) {
	if path == "" {
		return nil, ErrNoSoundFont
	}

	var (
		data []byte
		err  error
	)
	if fsys == nil {
		data, err = os.ReadFile(path)
	} else {
		data, err = fsys.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSoundFont, path, err)
	}

	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont %s: %w", path, err)
	}
	return sf, nil
}

// SoundFontRenderer plays timelines through a General MIDI SoundFont.
type SoundFontRenderer struct {
	soundFont *meltysynth.SoundFont
	tail      float64
}

// NewSoundFontRenderer returns a renderer using sf.
func NewSoundFontRenderer(sf *meltysynth.SoundFont) *SoundFontRenderer {
	return &SoundFontRenderer{soundFont: sf, tail: DefaultTail}
}

// SetTail changes the decay time rendered after the last event.
func (r *SoundFontRenderer) SetTail(ms float64) {
	r.tail = max(ms, 0)
}

// Render synthesizes the whole timeline and returns interleaved stereo
// samples.
func (r *SoundFontRenderer) Render(tl *music.Timeline) ([]int16, error) {
	seq, err := r.sequence(tl)
	if err != nil {
		return nil, err
	}

	out := make([]int16, 0, 2*seq.end)
	left := make([]float32, 1024)
	right := make([]float32, 1024)
	for !seq.done() {
		n := seq.render(left, right)
		for i := range n {
			out = append(out, toInt16(left[i]), toInt16(right[i]))
		}
	}
	return out, nil
}

// Stream returns a reader producing the timeline as 16-bit little-endian
// stereo PCM, rendered on demand.
func (r *SoundFontRenderer) Stream(tl *music.Timeline) (*TimelineStream, error) {
	seq, err := r.sequence(tl)
	if err != nil {
		return nil, err
	}
	return &TimelineStream{seq: seq}, nil
}

func (r *SoundFontRenderer) sequence(tl *music.Timeline) (*sequence, error) {
	if r.soundFont == nil {
		return nil, ErrNoSoundFont
	}
	synth, err := meltysynth.NewSynthesizer(r.soundFont, meltysynth.NewSynthesizerSettings(SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	return &sequence{
		synth:  synth,
		events: tl.Events(),
		end:    msToFrame(tl.Duration() + r.tail),
	}, nil
}

// sequence applies timeline events to a synthesizer at sample accuracy.
type sequence struct {
	synth  *meltysynth.Synthesizer
	events []music.Event
	next   int
	frame  int64
	end    int64
}

func (s *sequence) done() bool {
	return s.frame >= s.end
}

// render fills left and right with up to len(left) frames and returns the
// number rendered.
func (s *sequence) render(left, right []float32) int {
	n := int(min(int64(len(left)), s.end-s.frame))
	off := 0
	for off < n {
		for s.next < len(s.events) && msToFrame(s.events[s.next].StartTime()) <= s.frame {
			s.apply(s.events[s.next])
			s.next++
		}
		chunk := n - off
		if s.next < len(s.events) {
			chunk = int(min(int64(chunk), msToFrame(s.events[s.next].StartTime())-s.frame))
		}
		s.synth.Render(left[off:off+chunk], right[off:off+chunk])
		off += chunk
		s.frame += int64(chunk)
	}
	return n
}

func (s *sequence) apply(e music.Event) {
	ch := int32(e.Chan())
	switch ev := e.(type) {
	case music.PlayNote:
		s.synth.NoteOn(ch, int32(ev.Note), gm.DefaultVelocity)
	case music.StopNote:
		s.synth.NoteOff(ch, int32(ev.Note))
	case music.SetInstrument:
		s.synth.ProcessMidiMessage(ch, 0xC0, int32(ev.Program), 0)
	}
}

// TimelineStream implements io.Reader for Ebitengine/audio.
type TimelineStream struct {
	seq         *sequence
	left, right []float32
	stopped     bool
	mu          sync.Mutex
}

// Read renders len(p)/4 stereo frames. It returns io.EOF once the timeline
// and its tail have been rendered or the stream has been stopped.
func (s *TimelineStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.seq.done() {
		return 0, io.EOF
	}

	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(s.left) < frames {
		s.left = make([]float32, frames)
		s.right = make([]float32, frames)
	}
	left, right := s.left[:frames], s.right[:frames]

	n := s.seq.render(left, right)
	for i := range n {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(toInt16(left[i])))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(toInt16(right[i])))
	}
	return n * 4, nil
}

// Stop makes later reads return io.EOF.
func (s *TimelineStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Frames returns the number of stereo frames rendered so far.
func (s *TimelineStream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.frame
}

func msToFrame(ms float64) int64 {
	return int64(math.Round(ms * SampleRate / 1000))
}

func toInt16(v float32) int16 {
	return int16(clamp(v, -1, 1) * 32767)
}

// clamp restricts a value to the range [lo, hi].
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
