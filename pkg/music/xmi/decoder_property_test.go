package xmi

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/xmi/xmitest"
)

// buildRandomStream turns generated words into a well-formed event stream.
// Each word selects an operation with its low two bits and supplies the
// operands from the remaining bits.
func buildRandomStream(words []uint32) ([]byte, int) {
	s := xmitest.NewStream()
	notes := 0
	for _, w := range words {
		arg := w >> 2
		switch w & 3 {
		case 0:
			s.Delay(int(arg % 400))
		case 1:
			velocity := uint8(arg>>11) & 0x7F
			s.NoteOn(uint8(arg&0x0F), uint8(arg>>4)&0x7F, velocity, arg>>18)
			if velocity != 0 {
				notes++
			}
		case 2:
			s.Program(uint8(arg&0x0F), uint8(arg>>4)&0x7F)
		case 3:
			// 60..240 BPM
			s.Tempo(250000 + arg%750001)
		}
	}
	return s.Bytes(), notes
}

// TestTimelineSortedProperty checks that any decoded timeline is ordered by start time.
func TestTimelineSortedProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("decoded events are sorted by start time", prop.ForAll(
		func(words []uint32) bool {
			payload, _ := buildRandomStream(words)
			tl, err := quietDecoder().Decode(payload)
			if err != nil {
				t.Logf("Decode failed: %v", err)
				return false
			}
			for i := 1; i < tl.Len(); i++ {
				if tl.At(i-1).StartTime() > tl.At(i).StartTime() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.Property("every audible note-on yields one play and one stop", prop.ForAll(
		func(words []uint32) bool {
			payload, notes := buildRandomStream(words)
			tl, err := quietDecoder().Decode(payload)
			if err != nil {
				return false
			}
			plays, stops := 0, 0
			for _, e := range tl.All() {
				switch e.(type) {
				case music.PlayNote:
					plays++
				case music.StopNote:
					stops++
				}
			}
			return plays == notes && stops == notes
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

// TestNoteLengthProperty checks the tick conversion at the default tempo.
func TestNoteLengthProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("note length follows ticks/60*500 ms", prop.ForAll(
		func(duration uint32, note uint8, velocity uint8) bool {
			payload := xmitest.NewStream().NoteOn(0, note, velocity, duration).Bytes()
			tl, err := quietDecoder().Decode(payload)
			if err != nil || tl.Len() != 2 {
				return false
			}
			got := tl.At(1).StartTime() - tl.At(0).StartTime()
			want := float64(duration) / 60 * 500
			return math.Abs(got-want) < 1e-6
		},
		gen.UInt32Range(0, 1<<21),
		gen.UInt8Range(0, 127),
		gen.UInt8Range(1, 127),
	))

	properties.Property("zero velocity never produces events", prop.ForAll(
		func(duration uint32, note uint8, channel uint8) bool {
			payload := xmitest.NewStream().NoteOn(channel, note, 0, duration).Bytes()
			tl, err := quietDecoder().Decode(payload)
			return err == nil && tl.Len() == 0
		},
		gen.UInt32Range(0, 1<<21),
		gen.UInt8Range(0, 127),
		gen.UInt8Range(0, 15),
	))

	properties.TestingRun(t)
}
