package playback

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zurustar/musicdec/pkg/logger"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/tone"
)

// Source identifies the format a timeline was decoded from.
type Source int

const (
	SourceXMI Source = iota
	SourceMOD
)

func (s Source) String() string {
	switch s {
	case SourceXMI:
		return "xmi"
	case SourceMOD:
		return "mod"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Backend is the output chosen for a timeline.
type Backend int

const (
	BackendDevice Backend = iota
	BackendSoundFont
	BackendTone
)

func (b Backend) String() string {
	switch b {
	case BackendDevice:
		return "device"
	case BackendSoundFont:
		return "soundfont"
	case BackendTone:
		return "tone"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Output plays PCM. PCMPlayer is the production implementation.
type Output interface {
	PlayMono(samples []int16) error
	PlayStream(r io.Reader) error
	Wait(ctx context.Context) error
	Stop()
}

// DeviceOpener opens a MIDI output port by name.
type DeviceOpener func(name string) (OutputPort, error)

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) { r.log = l }
}

// WithDevice selects the MIDI port whose name contains name.
func WithDevice(name string) RouterOption {
	return func(r *Router) { r.deviceName = name }
}

// WithoutDevice skips MIDI output ports entirely.
func WithoutDevice() RouterOption {
	return func(r *Router) { r.useDevice = false }
}

// WithDeviceOpener replaces the gomidi port lookup.
func WithDeviceOpener(open DeviceOpener) RouterOption {
	return func(r *Router) { r.openDevice = open }
}

// WithSoundFont enables SoundFont synthesis for XMI timelines.
func WithSoundFont(sf *SoundFontRenderer) RouterOption {
	return func(r *Router) { r.soundFont = sf }
}

// WithTuning selects the tone table used by the fallback synthesizer.
func WithTuning(t tone.Tuning) RouterOption {
	return func(r *Router) { r.tuning = t }
}

// WithOutput sets the PCM output. Without it a PCMPlayer is created on first
// use.
func WithOutput(out Output) RouterOption {
	return func(r *Router) { r.out = out }
}

// Router picks a back-end for each timeline and plays it.
//
// XMI timelines go to a MIDI output port when one can be opened, otherwise
// to the SoundFont renderer when configured, otherwise to the tone
// synthesizer. MOD timelines always use the tone synthesizer.
type Router struct {
	log        *slog.Logger
	useDevice  bool
	deviceName string
	openDevice DeviceOpener
	soundFont  *SoundFontRenderer
	tuning     tone.Tuning
	out        Output
}

// NewRouter returns a Router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		log:       logger.GetLogger(),
		useDevice: true,
		openDevice: func(name string) (OutputPort, error) {
			p, err := Device(name)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		tuning: tone.Legacy,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Play plays tl to completion or until ctx is done, and returns the back-end
// that was used.
func (r *Router) Play(ctx context.Context, tl *music.Timeline, src Source) (Backend, error) {
	if src == SourceXMI && r.useDevice {
		port, err := r.openDevice(r.deviceName)
		if err == nil {
			defer port.Close()
			r.log.Info("Playing through MIDI device", "port", port.Name(), "events", tl.Len())
			return BackendDevice, Forward(ctx, tl, port.Send)
		}
		r.log.Info("MIDI device unavailable, using software synthesis", "error", err)
	}

	out := r.output()

	if src == SourceXMI && r.soundFont != nil {
		stream, err := r.soundFont.Stream(tl)
		if err != nil {
			return BackendSoundFont, err
		}
		r.log.Info("Playing through SoundFont", "events", tl.Len())
		if err := out.PlayStream(stream); err != nil {
			return BackendSoundFont, err
		}
		return BackendSoundFont, out.Wait(ctx)
	}

	samples := tone.Render(tl, tone.WithTuning(r.tuning))
	r.log.Info("Playing tone synthesis", "source", src, "samples", len(samples), "tuning", r.tuning)
	if err := out.PlayMono(samples); err != nil {
		return BackendTone, err
	}
	return BackendTone, out.Wait(ctx)
}

func (r *Router) output() Output {
	if r.out == nil {
		r.out = NewPCMPlayer(nil)
	}
	return r.out
}
