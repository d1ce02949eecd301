// Package mod reads 4-channel ProTracker modules and derives an approximate
// note timeline from their pattern sequence.
package mod

import (
	"fmt"

	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/cursor"
)

// Layout constants of the 4-channel format.
const (
	NumSamples     = 31
	NumChannels    = 4
	RowsPerPattern = 64
	MaxSongLength  = 128
	Signature      = "M!K!"

	titleLength      = 20
	sampleNameLength = 22
	bytesPerCell     = 4
	patternBytes     = RowsPerPattern * NumChannels * bytesPerCell
)

// Sample is a sample descriptor from the module header. Lengths and repeat
// values are in bytes.
type Sample struct {
	Name         string
	Length       int
	FineTune     int
	Volume       int
	RepeatOffset int
	RepeatLength int
}

// NoteCell is one channel's entry in one pattern row.
type NoteCell struct {
	SampleNumber  uint8
	Period        uint16
	EffectCommand uint16
}

// DecodeCell unpacks a 4-byte pattern cell.
func DecodeCell(b [4]byte) NoteCell {
	return NoteCell{
		SampleNumber:  b[0]&0xF0 | b[2]>>4,
		Period:        uint16(b[1]) | uint16(b[0]&0x0F)<<8,
		EffectCommand: uint16(b[3]) | uint16(b[2]&0x0F)<<8,
	}
}

// Pattern holds 64 rows for each of the 4 channels.
type Pattern struct {
	Channels [NumChannels][RowsPerPattern]NoteCell
}

// Cell returns the cell of a channel at a row.
func (p *Pattern) Cell(channel, row int) NoteCell {
	return p.Channels[channel][row]
}

// Module is a parsed module. It is not modified after Parse returns.
type Module struct {
	Title   string
	Samples [NumSamples]Sample

	// SongLength is the number of used entries in Order.
	SongLength int
	Order      [MaxSongLength]uint8
	Patterns   []Pattern
}

// Song returns the pattern index of every song position.
func (m *Module) Song() []int {
	song := make([]int, m.SongLength)
	for i := range song {
		song[i] = int(m.Order[i])
	}
	return song
}

// SongPatterns resolves the song positions to patterns.
func (m *Module) SongPatterns() []*Pattern {
	song := make([]*Pattern, m.SongLength)
	for i := range song {
		song[i] = &m.Patterns[m.Order[i]]
	}
	return song
}

// Parse reads the module header and pattern data. Sample waveforms that
// follow the patterns are not read.
func Parse(data []byte) (*Module, error) {
	m, err := parse(cursor.New(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", music.ErrInvalidFormat, err)
	}
	return m, nil
}

func parse(c *cursor.Cursor) (*Module, error) {
	m := &Module{}

	title, err := c.Bytes(titleLength)
	if err != nil {
		return nil, err
	}
	m.Title = decodeName(title)

	for i := range m.Samples {
		if m.Samples[i], err = readSample(c); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
	}

	songLength, err := c.U8()
	if err != nil {
		return nil, err
	}
	if songLength > MaxSongLength {
		return nil, fmt.Errorf("song length %d exceeds %d", songLength, MaxSongLength)
	}
	m.SongLength = int(songLength)

	// reserved (restart position on later trackers)
	if err := c.Skip(1); err != nil {
		return nil, err
	}

	order, err := c.Bytes(MaxSongLength)
	if err != nil {
		return nil, err
	}
	copy(m.Order[:], order)

	sig, err := c.Tag()
	if err != nil {
		return nil, err
	}
	if sig != Signature {
		return nil, fmt.Errorf("unsupported signature %q, want %q", sig, Signature)
	}

	// Pattern count is the highest index in the whole order table plus one.
	numPatterns := 0
	for _, p := range m.Order {
		numPatterns = max(numPatterns, int(p)+1)
	}

	m.Patterns = make([]Pattern, numPatterns)
	for i := range m.Patterns {
		raw, err := c.Bytes(patternBytes)
		if err != nil {
			return nil, fmt.Errorf("pattern %d of %d: %w", i, numPatterns, err)
		}
		readPattern(&m.Patterns[i], raw)
	}

	return m, nil
}

func readSample(c *cursor.Cursor) (Sample, error) {
	var s Sample

	name, err := c.Bytes(sampleNameLength)
	if err != nil {
		return s, err
	}
	length, err := c.U16()
	if err != nil {
		return s, err
	}
	fineTune, err := c.U8()
	if err != nil {
		return s, err
	}
	volume, err := c.U8()
	if err != nil {
		return s, err
	}
	repeatOffset, err := c.U16()
	if err != nil {
		return s, err
	}
	repeatLength, err := c.U16()
	if err != nil {
		return s, err
	}

	s.Name = decodeName(name)
	s.Length = int(length) * 2
	s.FineTune = decodeFineTune(fineTune)
	s.Volume = int(volume)
	s.RepeatOffset = int(repeatOffset) * 2
	s.RepeatLength = int(repeatLength) * 2
	return s, nil
}

// decodeFineTune maps the low nibble to -8..7.
func decodeFineTune(b uint8) int {
	v := int(b & 0x0F)
	if v >= 8 {
		v -= 16
	}
	return v
}

// readPattern fills the channels from 256 row-major cells.
func readPattern(p *Pattern, raw []byte) {
	for i := 0; i < RowsPerPattern*NumChannels; i++ {
		var cell [4]byte
		copy(cell[:], raw[i*bytesPerCell:])
		p.Channels[i%NumChannels][i/NumChannels] = DecodeCell(cell)
	}
}
