// Package modtest builds 4-channel module files for tests.
package modtest

import "encoding/binary"

// Sample is a header sample entry. Length and repeat values are in words, as stored.
type Sample struct {
	Name         string
	Length       uint16
	FineTune     uint8
	Volume       uint8
	RepeatOffset uint16
	RepeatLength uint16
}

// Builder assembles a module file.
type Builder struct {
	Title      string
	Samples    [31]Sample
	SongLength uint8
	Order      [128]uint8
	Signature  string
	Patterns   [][256][4]byte

	// Trailing bytes appended after the pattern data (sample waveforms).
	Trailer []byte
}

// New returns a builder with the "M!K!" signature and no patterns.
func New() *Builder {
	return &Builder{Signature: "M!K!"}
}

// Song sets the order table and the song length.
func (b *Builder) Song(order ...uint8) *Builder {
	b.SongLength = uint8(len(order))
	copy(b.Order[:], order)
	for _, p := range order {
		b.ensure(int(p))
	}
	return b
}

// Cell stores a note cell.
func (b *Builder) Cell(pattern, row, channel int, sample uint8, period, effect uint16) *Builder {
	b.ensure(pattern)
	b.Patterns[pattern][row*4+channel] = EncodeCell(sample, period, effect)
	return b
}

// Note stores a cell with only a period.
func (b *Builder) Note(pattern, row, channel int, period uint16) *Builder {
	return b.Cell(pattern, row, channel, 1, period, 0)
}

func (b *Builder) ensure(pattern int) {
	for len(b.Patterns) <= pattern {
		b.Patterns = append(b.Patterns, [256][4]byte{})
	}
}

// EncodeCell packs a note cell into its 4-byte form.
func EncodeCell(sample uint8, period, effect uint16) [4]byte {
	return [4]byte{
		sample&0xF0 | uint8(period>>8)&0x0F,
		uint8(period),
		(sample&0x0F)<<4 | uint8(effect>>8)&0x0F,
		uint8(effect),
	}
}

// Bytes renders the module. Pattern data is written for every pattern
// referenced by the full order table.
func (b *Builder) Bytes() []byte {
	var out []byte
	out = appendName(out, b.Title, 20)
	for _, s := range b.Samples {
		out = appendName(out, s.Name, 22)
		out = binary.BigEndian.AppendUint16(out, s.Length)
		out = append(out, s.FineTune, s.Volume)
		out = binary.BigEndian.AppendUint16(out, s.RepeatOffset)
		out = binary.BigEndian.AppendUint16(out, s.RepeatLength)
	}
	out = append(out, b.SongLength, 0x7F)
	out = append(out, b.Order[:]...)
	out = append(out, b.Signature...)

	numPatterns := 0
	for _, p := range b.Order {
		numPatterns = max(numPatterns, int(p)+1)
	}
	b.ensure(numPatterns - 1)
	for i := 0; i < numPatterns; i++ {
		for _, cell := range b.Patterns[i] {
			out = append(out, cell[:]...)
		}
	}
	return append(out, b.Trailer...)
}

func appendName(out []byte, name string, size int) []byte {
	field := make([]byte, size)
	copy(field, name)
	return append(out, field...)
}
