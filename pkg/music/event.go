// Package music holds the normalized event model shared by the XMI and MOD
// decoders and by every playback back-end.
package music

import "fmt"

// Event is a single time-stamped musical event.
//
// The set of implementations is closed: PlayNote, StopNote and SetInstrument.
// Consumers are expected to type-switch over them.
type Event interface {
	// StartTime returns the event time in milliseconds from the start of the track.
	StartTime() float64
	// Chan returns the MIDI channel (0-15) the event belongs to.
	Chan() uint8

	event()
}

// PlayNote starts a note.
type PlayNote struct {
	Start   float64
	Channel uint8
	Note    uint8
}

// StopNote releases a note started by a PlayNote with the same channel and note.
type StopNote struct {
	Start   float64
	Channel uint8
	Note    uint8
}

// SetInstrument selects the program (instrument) of a channel.
type SetInstrument struct {
	Start   float64
	Channel uint8
	Program uint8
}

func (e PlayNote) StartTime() float64      { return e.Start }
func (e StopNote) StartTime() float64      { return e.Start }
func (e SetInstrument) StartTime() float64 { return e.Start }

func (e PlayNote) Chan() uint8      { return e.Channel }
func (e StopNote) Chan() uint8      { return e.Channel }
func (e SetInstrument) Chan() uint8 { return e.Channel }

func (PlayNote) event()      {}
func (StopNote) event()      {}
func (SetInstrument) event() {}

func (e PlayNote) String() string {
	return fmt.Sprintf("%10.3f ms  ch=%-2d play     note=%d", e.Start, e.Channel, e.Note)
}

func (e StopNote) String() string {
	return fmt.Sprintf("%10.3f ms  ch=%-2d stop     note=%d", e.Start, e.Channel, e.Note)
}

func (e SetInstrument) String() string {
	return fmt.Sprintf("%10.3f ms  ch=%-2d program  %d", e.Start, e.Channel, e.Program)
}
