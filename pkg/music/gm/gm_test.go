package gm

import (
	"testing"

	"github.com/zurustar/musicdec/pkg/music"
)

func TestMessage(t *testing.T) {
	t.Run("PlayNote becomes NoteOn", func(t *testing.T) {
		msg := Message(music.PlayNote{Start: 10, Channel: 3, Note: 64})
		var ch, key, vel uint8
		if !msg.GetNoteOn(&ch, &key, &vel) {
			t.Fatalf("expected NoteOn, got %v", msg)
		}
		if ch != 3 || key != 64 || vel != DefaultVelocity {
			t.Errorf("NoteOn = ch %d key %d vel %d", ch, key, vel)
		}
	})

	t.Run("StopNote becomes NoteOff", func(t *testing.T) {
		msg := Message(music.StopNote{Start: 10, Channel: 9, Note: 36})
		var ch, key, vel uint8
		if !msg.GetNoteOff(&ch, &key, &vel) {
			t.Fatalf("expected NoteOff, got %v", msg)
		}
		if ch != 9 || key != 36 {
			t.Errorf("NoteOff = ch %d key %d", ch, key)
		}
	})

	t.Run("SetInstrument becomes ProgramChange", func(t *testing.T) {
		msg := Message(music.SetInstrument{Start: 0, Channel: 1, Program: 42})
		var ch, prog uint8
		if !msg.GetProgramChange(&ch, &prog) {
			t.Fatalf("expected ProgramChange, got %v", msg)
		}
		if ch != 1 || prog != 42 {
			t.Errorf("ProgramChange = ch %d prog %d", ch, prog)
		}
	})
}
