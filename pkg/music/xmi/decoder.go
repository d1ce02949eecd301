package xmi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zurustar/musicdec/pkg/logger"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/cursor"
)

// Status nibbles and meta types understood by the decoder.
const (
	statusNoteOff         = 0x8
	statusNoteOn          = 0x9
	statusAftertouch      = 0xA
	statusControlChange   = 0xB
	statusProgramChange   = 0xC
	statusChannelPressure = 0xD
	statusPitchBend       = 0xE

	statusMeta = 0xFF

	metaSetTempo      = 0x51
	metaTimeSignature = 0x58
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for diagnostics. The default is logger.GetLogger().
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// Decoder converts an EVNT payload to a timeline. A Decoder holds no state
// between calls and may be reused.
type Decoder struct {
	log *slog.Logger
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.GetLogger()
	}
	return d
}

// decodeState is the per-call state: the running clock and the tempo in effect.
type decodeState struct {
	c      *cursor.Cursor
	now    float64
	tempo  int
	events []music.Event
}

func (s *decodeState) ms(ticks int) float64 {
	return music.TicksToMs(ticks, s.tempo)
}

// Decode walks the EVNT payload once and returns the events sorted by start
// time.
//
// Bytes below 0x80 between events are XMI delays in ticks. Note-on events
// carry their own duration, so every audible note produces a PlayNote and a
// matching StopNote; note-ons with zero velocity are dropped. If the payload
// ends in the middle of an event the events decoded so far are returned.
func (d *Decoder) Decode(payload []byte) (*music.Timeline, error) {
	s := &decodeState{
		c:     cursor.New(payload),
		tempo: music.DefaultTempo,
	}

	for !s.c.Exhausted() {
		err := d.step(s)
		if errors.Is(err, cursor.ErrExhausted) {
			d.log.Warn("XMI event stream truncated", "offset", s.c.Pos(), "events", len(s.events), "error", err)
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return music.NewTimeline(s.events), nil
}

func (d *Decoder) step(s *decodeState) error {
	at := s.c.Pos()
	status, err := s.c.U8()
	if err != nil {
		return err
	}

	if status>>4 < 8 {
		s.now += s.ms(int(status))
		return nil
	}

	if status == statusMeta {
		return d.meta(s)
	}

	channel := status & 0x0F
	switch status >> 4 {
	case statusNoteOn:
		note, err := s.c.U8()
		if err != nil {
			return err
		}
		velocity, err := s.c.U8()
		if err != nil {
			return err
		}
		duration, err := s.c.VarLen()
		if err != nil {
			return err
		}
		if velocity == 0 {
			return nil
		}
		s.events = append(s.events,
			music.PlayNote{Start: s.now, Channel: channel, Note: note & 0x7F},
			music.StopNote{Start: s.now + s.ms(int(duration)), Channel: channel, Note: note & 0x7F},
		)

	case statusProgramChange:
		program, err := s.c.U8()
		if err != nil {
			return err
		}
		s.events = append(s.events, music.SetInstrument{Start: s.now, Channel: channel, Program: program & 0x7F})

	case statusNoteOff, statusAftertouch, statusControlChange, statusPitchBend:
		return s.c.Skip(2)

	case statusChannelPressure:
		return s.c.Skip(1)

	default:
		return fmt.Errorf("%w: status 0x%02X at offset %d", music.ErrUnsupportedEventType, status, at)
	}

	return nil
}

func (d *Decoder) meta(s *decodeState) error {
	typ, err := s.c.U8()
	if err != nil {
		return err
	}
	length, err := s.c.U8()
	if err != nil {
		return err
	}

	switch typ {
	case metaSetTempo:
		if length != 3 {
			return fmt.Errorf("%w: set-tempo meta event with length %d, want 3", music.ErrInvalidEventLength, length)
		}
		tempo, err := s.c.U24()
		if err != nil {
			return err
		}
		s.tempo = int(tempo)
		d.log.Debug("XMI tempo change", "at_ms", s.now, "us_per_quarter", s.tempo)

	case metaTimeSignature:
		if length != 4 {
			return fmt.Errorf("%w: time-signature meta event with length %d, want 4", music.ErrInvalidEventLength, length)
		}
		sig, err := s.c.Bytes(4)
		if err != nil {
			return err
		}
		d.log.Debug("XMI time signature",
			"at_ms", s.now,
			"numerator", sig[0],
			"denominator", 1<<sig[1],
			"clocks_per_click", sig[2],
			"thirty_seconds_per_quarter", sig[3])

	default:
		return s.c.Skip(int(length))
	}

	return nil
}
