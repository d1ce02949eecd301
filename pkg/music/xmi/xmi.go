package xmi

import (
	"errors"

	"github.com/zurustar/musicdec/pkg/music"
)

// Parse decodes a complete XMI track.
//
// A file whose chunk structure does not match is not an error: the mismatch
// is logged and an empty timeline is returned, so a broken music track plays
// as silence. Malformed events inside the EVNT payload are returned as
// errors (music.ErrInvalidEventLength, music.ErrUnsupportedEventType).
func Parse(data []byte, opts ...Option) (*music.Timeline, error) {
	d := NewDecoder(opts...)

	ct, err := ParseContainer(data)
	if err != nil {
		if errors.Is(err, music.ErrContainerMismatch) {
			d.log.Debug("XMI container rejected, using empty timeline", "error", err)
			return music.Empty(), nil
		}
		return nil, err
	}

	d.log.Debug("XMI container parsed",
		"timbres", len(ct.Timbres),
		"payload_bytes", len(ct.Events),
		"declared_bytes", ct.EventsLength)

	return d.Decode(ct.Events)
}
