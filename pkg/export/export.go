// Package export writes decoded music to files: rendered PCM as WAV and
// timelines as Standard MIDI Files.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/gm"
	"github.com/zurustar/musicdec/pkg/music/tone"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// bitDepth of exported WAV files.
	bitDepth = 16

	// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
	wavFormatPCM = 1

	// Resolution is the SMF time division in ticks per quarter note.
	Resolution = 960

	// BPM is the tempo written to SMF files. Event times are converted from
	// milliseconds at this tempo, so any value reproduces the timing.
	BPM = 120.0
)

// WriteWAV encodes 16-bit samples at tone.SampleRate. Multi-channel samples
// are interleaved.
func WriteWAV(w io.WriteSeeker, samples []int16, channels int) error {
	if channels < 1 {
		return fmt.Errorf("invalid channel count: %d", channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), channels)
	}

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}

	enc := wav.NewEncoder(w, tone.SampleRate, bitDepth, channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: tone.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

// WriteSMF writes the timeline as a single-track (format 0) Standard MIDI
// File.
func WriteSMF(w io.Writer, tl *music.Timeline) error {
	ticks := smf.MetricTicks(Resolution)

	var track smf.Track
	track.Add(0, smf.MetaTempo(BPM))

	var last uint32
	for _, e := range tl.All() {
		at := ticks.Ticks(BPM, msToDuration(e.StartTime()))
		if at < last {
			at = last
		}
		track.Add(at-last, gm.Message(e))
		last = at
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(track); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write SMF: %w", err)
	}
	return nil
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
