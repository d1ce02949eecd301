// Package xmitest builds XMI byte streams for tests.
package xmitest

import "encoding/binary"

// Stream accumulates an EVNT payload.
type Stream struct {
	buf []byte
}

// NewStream returns an empty event stream.
func NewStream() *Stream {
	return &Stream{}
}

// Delay appends XMI delay bytes totalling ticks (each byte is at most 0x7F).
func (s *Stream) Delay(ticks int) *Stream {
	for ticks > 0x7F {
		s.buf = append(s.buf, 0x7F)
		ticks -= 0x7F
	}
	if ticks > 0 {
		s.buf = append(s.buf, byte(ticks))
	}
	return s
}

// NoteOn appends a note-on with its duration in ticks.
func (s *Stream) NoteOn(channel, note, velocity uint8, duration uint32) *Stream {
	s.buf = append(s.buf, 0x90|channel&0x0F, note, velocity)
	s.buf = append(s.buf, VarLen(duration)...)
	return s
}

// Program appends a program change.
func (s *Stream) Program(channel, program uint8) *Stream {
	s.buf = append(s.buf, 0xC0|channel&0x0F, program)
	return s
}

// Tempo appends a set-tempo meta event.
func (s *Stream) Tempo(usPerQuarter uint32) *Stream {
	return s.Meta(0x51, []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)})
}

// TimeSignature appends a time-signature meta event.
func (s *Stream) TimeSignature(numerator, denominatorPow, clocks, thirtySeconds uint8) *Stream {
	return s.Meta(0x58, []byte{numerator, denominatorPow, clocks, thirtySeconds})
}

// Meta appends a meta event with a one-byte length.
func (s *Stream) Meta(typ uint8, data []byte) *Stream {
	s.buf = append(s.buf, 0xFF, typ, byte(len(data)))
	s.buf = append(s.buf, data...)
	return s
}

// Raw appends bytes verbatim.
func (s *Stream) Raw(b ...byte) *Stream {
	s.buf = append(s.buf, b...)
	return s
}

// Bytes returns the payload built so far.
func (s *Stream) Bytes() []byte {
	return append([]byte(nil), s.buf...)
}

// VarLen encodes v as a big-endian base-128 quantity.
func VarLen(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

// Timbre is a patch/bank pair for the TIMB chunk.
type Timbre struct {
	Patch, Bank uint8
}

// Container wraps an EVNT payload in a single-track XMI file.
func Container(events []byte, timbres ...Timbre) []byte {
	return ContainerWithTracks(1, events, timbres...)
}

// ContainerWithTracks is Container with an explicit INFO track count.
func ContainerWithTracks(tracks uint16, events []byte, timbres ...Timbre) []byte {
	var out []byte
	u32 := func(v int) {
		out = binary.BigEndian.AppendUint32(out, uint32(v))
	}
	tag := func(t string) {
		out = append(out, t...)
	}

	timbLen := 2 + len(timbres)*2
	evntLen := len(events)
	xmidLen := 4 + 8 + timbLen + 8 + evntLen

	tag("FORM")
	u32(4 + 8 + 2)
	tag("XDIR")
	tag("INFO")
	u32(2)
	out = binary.LittleEndian.AppendUint16(out, tracks)

	tag("CAT ")
	u32(4 + 8 + xmidLen)
	tag("XMID")
	tag("FORM")
	u32(xmidLen)
	tag("XMID")

	tag("TIMB")
	u32(timbLen)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(timbres)))
	for _, t := range timbres {
		out = append(out, t.Patch, t.Bank)
	}

	tag("EVNT")
	u32(evntLen)
	out = append(out, events...)
	return out
}
