package mod

import (
	"github.com/zurustar/musicdec/pkg/music"
)

// PositionStep is how far the clock advances per song position, in
// milliseconds. The clock moves once per pattern occurrence, not per row, so
// the result only approximates the tracker's own timing.
const PositionStep = 20.0

// channelCursor is the read position of one channel of one pattern.
type channelCursor struct {
	row int
}

func (c *channelCursor) next(p *Pattern, channel int) NoteCell {
	cell := p.Channels[channel][c.row]
	c.row = (c.row + 1) % RowsPerPattern
	return cell
}

// Timeline derives note events from the song.
//
// Every song position reads one row from each channel. The row is taken from
// a cursor that belongs to the pattern being played, so a pattern that occurs
// several times in the song continues where its previous occurrence stopped
// and wraps after 64 reads. Notes still sounding after the last position are
// stopped at the final clock value.
func (m *Module) Timeline() *music.Timeline {
	cursors := make([][NumChannels]channelCursor, len(m.Patterns))

	var active [NumChannels]struct {
		note uint8
		on   bool
	}
	var events []music.Event
	clock := 0.0

	for _, idx := range m.Song() {
		p := &m.Patterns[idx]
		for ch := 0; ch < NumChannels; ch++ {
			cell := cursors[idx][ch].next(p, ch)
			note, on := PeriodToNote(cell.Period)

			prev := active[ch]
			if prev.on == on && (!on || prev.note == note) {
				continue
			}
			if prev.on {
				events = append(events, music.StopNote{Start: clock, Channel: uint8(ch), Note: prev.note})
			}
			if on {
				events = append(events, music.PlayNote{Start: clock, Channel: uint8(ch), Note: note})
			}
			active[ch].note, active[ch].on = note, on
		}
		clock += PositionStep
	}

	for ch, a := range active {
		if a.on {
			events = append(events, music.StopNote{Start: clock, Channel: uint8(ch), Note: a.note})
		}
	}

	return music.NewTimeline(events)
}
