// Package gm maps timeline events to General MIDI channel messages.
package gm

import (
	"github.com/zurustar/musicdec/pkg/music"
	"gitlab.com/gomidi/midi/v2"
)

// DefaultVelocity is the velocity of every NoteOn produced from a PlayNote.
// The timeline does not carry velocities.
const DefaultVelocity = 100

// Message converts an event to its MIDI channel message.
func Message(e music.Event) midi.Message {
	switch ev := e.(type) {
	case music.PlayNote:
		return midi.NoteOn(ev.Channel, ev.Note, DefaultVelocity)
	case music.StopNote:
		return midi.NoteOff(ev.Channel, ev.Note)
	case music.SetInstrument:
		return midi.ProgramChange(ev.Channel, ev.Program)
	}
	return nil
}
