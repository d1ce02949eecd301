package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/tone"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeTempWAV(t *testing.T, samples []int16, channels int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()
	if err := WriteWAV(f, samples, channels); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}
	return path
}

func TestWriteWAV_Mono(t *testing.T) {
	samples := tone.Render(music.NewTimeline([]music.Event{
		music.PlayNote{Start: 0, Channel: 0, Note: 69},
		music.StopNote{Start: 50, Channel: 0, Note: 69},
	}), tone.WithTuning(tone.EqualTempered))

	path := writeTempWAV(t, samples, 1)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("written file is not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer failed: %v", err)
	}

	if dec.SampleRate != tone.SampleRate {
		t.Errorf("SampleRate = %d, want %d", dec.SampleRate, tone.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("NumChans = %d, want 1", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", dec.BitDepth)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i, v := range samples {
		if buf.Data[i] != int(v) {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], v)
		}
	}
}

func TestWriteWAV_Stereo(t *testing.T) {
	samples := []int16{0, 0, 100, -100, 32767, -32768}
	path := writeTempWAV(t, samples, 2)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer failed: %v", err)
	}
	if dec.NumChans != 2 {
		t.Errorf("NumChans = %d, want 2", dec.NumChans)
	}
	for i, v := range samples {
		if buf.Data[i] != int(v) {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], v)
		}
	}
}

func TestWriteWAV_InvalidChannels(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteWAV(f, []int16{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero channels")
	}
	if err := WriteWAV(f, []int16{1, 2, 3}, 2); err == nil {
		t.Error("expected error for odd sample count in stereo")
	}
}

func TestWriteSMF(t *testing.T) {
	tl := music.NewTimeline([]music.Event{
		music.SetInstrument{Start: 0, Channel: 1, Program: 19},
		music.PlayNote{Start: 0, Channel: 1, Note: 60},
		music.StopNote{Start: 500, Channel: 1, Note: 60},
		music.PlayNote{Start: 500, Channel: 1, Note: 64},
		music.StopNote{Start: 1000, Channel: 1, Note: 64},
	})

	var out bytes.Buffer
	if err := WriteSMF(&out, tl); err != nil {
		t.Fatalf("WriteSMF failed: %v", err)
	}

	s, err := smf.ReadFrom(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(s.Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1", len(s.Tracks))
	}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); !ok || mt.Resolution() != Resolution {
		t.Errorf("TimeFormat = %v, want %d ticks per quarter", s.TimeFormat, Resolution)
	}

	type timed struct {
		tick uint32
		msg  midi.Message
	}
	var (
		events []timed
		tempo  float64
		tick   uint32
	)
	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			tempo = bpm
			continue
		}
		if ev.Message.IsMeta() {
			continue
		}
		events = append(events, timed{tick, midi.Message(ev.Message)})
	}

	if tempo != BPM {
		t.Errorf("tempo = %v, want %v", tempo, BPM)
	}
	if len(events) != tl.Len() {
		t.Fatalf("read %d channel events, want %d", len(events), tl.Len())
	}

	// 500 ms at 120 BPM is one quarter note.
	wantTicks := []uint32{0, 0, 960, 960, 1920}
	for i, e := range events {
		if e.tick != wantTicks[i] {
			t.Errorf("event %d at tick %d, want %d", i, e.tick, wantTicks[i])
		}
	}

	var ch, prog, key, vel uint8
	if !events[0].msg.GetProgramChange(&ch, &prog) || ch != 1 || prog != 19 {
		t.Errorf("event 0 = %v, want program change 19 on channel 1", events[0].msg)
	}
	if !events[1].msg.GetNoteOn(&ch, &key, &vel) || key != 60 {
		t.Errorf("event 1 = %v, want note on 60", events[1].msg)
	}
	if !events[4].msg.GetNoteOff(&ch, &key, &vel) || key != 64 {
		t.Errorf("event 4 = %v, want note off 64", events[4].msg)
	}
}

func TestWriteSMF_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := WriteSMF(&out, music.Empty()); err != nil {
		t.Fatalf("WriteSMF failed: %v", err)
	}
	if _, err := smf.ReadFrom(bytes.NewReader(out.Bytes())); err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
}
