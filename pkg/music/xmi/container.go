// Package xmi decodes XMI ("Extended MIDI") music tracks into a music.Timeline.
package xmi

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/cursor"
)

// Chunk identifiers, in the order they must appear.
const (
	TagForm   = "FORM"
	TagXDir   = "XDIR"
	TagInfo   = "INFO"
	TagCat    = "CAT "
	TagXMid   = "XMID"
	TagTimbre = "TIMB"
	TagEvents = "EVNT"
)

// SupportedTrackCount is the only track count accepted in the INFO chunk.
const SupportedTrackCount = 1

// Timbre is one patch/bank pair from the TIMB chunk.
type Timbre struct {
	Patch uint8
	Bank  uint8
}

// Container is the result of walking the XMI chunk structure.
// Chunk lengths are recorded as found; they are not used for navigation.
type Container struct {
	FormLength   uint32
	InfoLength   uint32
	CatLength    uint32
	XMidLength   uint32
	TimbreLength uint32
	EventsLength uint32

	TrackCount uint16
	Timbres    []Timbre

	// Events is the EVNT payload: everything after the EVNT length field.
	Events []byte
}

// ParseContainer validates the chunk sequence
//
//	FORM XDIR INFO CAT  XMID FORM XMID TIMB EVNT
//
// and locates the event payload. Any deviation, including running out of
// bytes before EVNT, is reported as music.ErrContainerMismatch.
func ParseContainer(data []byte) (*Container, error) {
	c := cursor.New(data)
	ct := &Container{}

	if err := parseContainer(c, ct); err != nil {
		if errors.Is(err, cursor.ErrExhausted) {
			return nil, fmt.Errorf("%w: %v", music.ErrContainerMismatch, err)
		}
		return nil, err
	}
	return ct, nil
}

func parseContainer(c *cursor.Cursor, ct *Container) error {
	var err error

	if err = expectTag(c, TagForm); err != nil {
		return err
	}
	if ct.FormLength, err = c.U32(); err != nil {
		return err
	}
	if err = expectTag(c, TagXDir); err != nil {
		return err
	}
	if err = expectTag(c, TagInfo); err != nil {
		return err
	}
	if ct.InfoLength, err = c.U32(); err != nil {
		return err
	}

	c.SetOrder(binary.LittleEndian)
	if ct.TrackCount, err = c.U16(); err != nil {
		return err
	}
	c.SetOrder(binary.BigEndian)
	if ct.TrackCount != SupportedTrackCount {
		return fmt.Errorf("%w: %d tracks, only single-track files are supported", music.ErrContainerMismatch, ct.TrackCount)
	}

	if err = expectTag(c, TagCat); err != nil {
		return err
	}
	if ct.CatLength, err = c.U32(); err != nil {
		return err
	}
	if err = expectTag(c, TagXMid); err != nil {
		return err
	}
	if err = expectTag(c, TagForm); err != nil {
		return err
	}
	if ct.XMidLength, err = c.U32(); err != nil {
		return err
	}
	if err = expectTag(c, TagXMid); err != nil {
		return err
	}

	if err = expectTag(c, TagTimbre); err != nil {
		return err
	}
	if ct.TimbreLength, err = c.U32(); err != nil {
		return err
	}
	c.SetOrder(binary.LittleEndian)
	count, err := c.U16()
	c.SetOrder(binary.BigEndian)
	if err != nil {
		return err
	}
	raw, err := c.Bytes(int(count) * 2)
	if err != nil {
		return err
	}
	ct.Timbres = make([]Timbre, count)
	for i := range ct.Timbres {
		ct.Timbres[i] = Timbre{Patch: raw[i*2], Bank: raw[i*2+1]}
	}

	if err = expectTag(c, TagEvents); err != nil {
		return err
	}
	if ct.EventsLength, err = c.U32(); err != nil {
		return err
	}
	ct.Events = c.Rest()

	return nil
}

func expectTag(c *cursor.Cursor, want string) error {
	at := c.Pos()
	got, err := c.Tag()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: expected %q at offset %d, found %q", music.ErrContainerMismatch, want, at, got)
	}
	return nil
}
