package playback

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// pollInterval is how often Wait checks whether playback has finished.
const pollInterval = 50 * time.Millisecond

// PCMPlayer plays 16-bit PCM through Ebitengine/audio. One player plays one
// stream at a time; starting another stops the previous one.
type PCMPlayer struct {
	audioCtx *audio.Context
	player   *audio.Player
	stream   *TimelineStream

	mu sync.Mutex
}

// NewPCMPlayer returns a player on audioCtx. A nil context reuses the
// process-wide context or creates one at SampleRate; Ebitengine allows only
// one.
func NewPCMPlayer(audioCtx *audio.Context) *PCMPlayer {
	if audioCtx == nil {
		audioCtx = audio.CurrentContext()
	}
	if audioCtx == nil {
		audioCtx = audio.NewContext(SampleRate)
	}
	return &PCMPlayer{audioCtx: audioCtx}
}

// PlayMono starts playback of mono samples.
func (pp *PCMPlayer) PlayMono(samples []int16) error {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	pp.stopInternal()
	pp.start(pp.audioCtx.NewPlayerFromBytes(MonoToStereo(samples)))
	return nil
}

// PlayStream starts playback of a 16-bit little-endian stereo stream.
func (pp *PCMPlayer) PlayStream(r io.Reader) error {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	pp.stopInternal()
	player, err := pp.audioCtx.NewPlayer(r)
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	if ts, ok := r.(*TimelineStream); ok {
		pp.stream = ts
	}
	pp.start(player)
	return nil
}

// start must be called with pp.mu held.
func (pp *PCMPlayer) start(player *audio.Player) {
	player.Play()
	pp.player = player
}

// Wait blocks until playback finishes or ctx is done. On cancellation the
// player is stopped.
func (pp *PCMPlayer) Wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for pp.IsPlaying() {
		select {
		case <-ctx.Done():
			pp.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// IsPlaying reports whether a stream is currently playing.
func (pp *PCMPlayer) IsPlaying() bool {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return pp.player != nil && pp.player.IsPlaying()
}

// Stop stops the current playback.
func (pp *PCMPlayer) Stop() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.stopInternal()
}

// stopInternal must be called with pp.mu held.
func (pp *PCMPlayer) stopInternal() {
	// Stop the stream first to prevent further reads
	if pp.stream != nil {
		pp.stream.Stop()
		pp.stream = nil
	}
	if pp.player != nil {
		pp.player.Close()
		pp.player = nil
	}
}

// MonoToStereo duplicates each sample into both channels and encodes the
// result as 16-bit little-endian bytes, the layout Ebitengine expects.
func MonoToStereo(samples []int16) []byte {
	b := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(b[i*4+2:], uint16(v))
	}
	return b
}
