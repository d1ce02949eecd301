// Package playback sends decoded timelines to an audio back-end: a MIDI output
// port, a SoundFont synthesizer, or the sine-tone fallback.
package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/gm"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	// ErrNoDevice is returned when no MIDI output port is available.
	ErrNoDevice = errors.New("no MIDI output device")

	// ErrNoSoundFont is returned when a SoundFont is required but missing.
	ErrNoSoundFont = errors.New("SoundFont file is required for synthesis")
)

// Sender delivers one MIDI message.
type Sender func(midi.Message) error

// OutputPort is an open MIDI output.
type OutputPort interface {
	Name() string
	Send(msg midi.Message) error
	Close() error
}

// Port is a MIDI output port opened through the registered gomidi driver.
type Port struct {
	out  drivers.Out
	send func(midi.Message) error
}

// Device opens the first output port whose name contains name, ignoring
// case. An empty name selects the first port.
func Device(name string) (*Port, error) {
	ports := midi.GetOutPorts()
	if len(ports) == 0 {
		return nil, ErrNoDevice
	}

	var out drivers.Out
	if name == "" {
		out = ports[0]
	} else {
		want := strings.ToLower(name)
		for _, p := range ports {
			if strings.Contains(strings.ToLower(p.String()), want) {
				out = p
				break
			}
		}
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, name)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI port %s: %w", out.String(), err)
	}
	return &Port{out: out, send: send}, nil
}

// Name returns the driver's name for the port.
func (p *Port) Name() string {
	return p.out.String()
}

// Send writes msg to the port.
func (p *Port) Send(msg midi.Message) error {
	return p.send(msg)
}

// Close closes the port.
func (p *Port) Close() error {
	return p.out.Close()
}

// Forward sends every event of tl at its start time, measured from the call.
// When ctx is cancelled the notes still sounding are released and ctx.Err()
// is returned.
func Forward(ctx context.Context, tl *music.Timeline, send Sender) error {
	type held struct{ channel, note uint8 }
	sounding := make(map[held]int)

	release := func() {
		for h, n := range sounding {
			for range n {
				_ = send(midi.NoteOff(h.channel, h.note))
			}
		}
	}

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, e := range tl.All() {
		due := start.Add(time.Duration(e.StartTime() * float64(time.Millisecond)))
		if wait := time.Until(due); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				release()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			release()
			return err
		}

		if err := send(gm.Message(e)); err != nil {
			return fmt.Errorf("failed to send %v: %w", e, err)
		}

		switch ev := e.(type) {
		case music.PlayNote:
			sounding[held{ev.Channel, ev.Note}]++
		case music.StopNote:
			h := held{ev.Channel, ev.Note}
			if sounding[h] > 1 {
				sounding[h]--
			} else {
				delete(sounding, h)
			}
		}
	}
	return nil
}
