package xmi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/xmi/xmitest"
)

func TestParseContainer_Valid(t *testing.T) {
	payload := xmitest.NewStream().Program(0, 19).NoteOn(0, 60, 100, 60).Bytes()
	data := xmitest.Container(payload,
		xmitest.Timbre{Patch: 19, Bank: 0},
		xmitest.Timbre{Patch: 48, Bank: 1},
	)

	ct, err := ParseContainer(data)
	if err != nil {
		t.Fatalf("ParseContainer failed: %v", err)
	}

	if ct.TrackCount != 1 {
		t.Errorf("TrackCount = %d, want 1", ct.TrackCount)
	}
	if len(ct.Timbres) != 2 {
		t.Fatalf("len(Timbres) = %d, want 2", len(ct.Timbres))
	}
	if ct.Timbres[1] != (Timbre{Patch: 48, Bank: 1}) {
		t.Errorf("Timbres[1] = %+v, want {48 1}", ct.Timbres[1])
	}
	if !bytes.Equal(ct.Events, payload) {
		t.Errorf("Events = % X, want % X", ct.Events, payload)
	}
	if ct.EventsLength != uint32(len(payload)) {
		t.Errorf("EventsLength = %d, want %d", ct.EventsLength, len(payload))
	}
}

func TestParseContainer_TagMismatch(t *testing.T) {
	data := xmitest.Container(xmitest.NewStream().NoteOn(0, 60, 100, 60).Bytes())

	// Offsets of every tag in a container with no timbres.
	tags := []struct {
		tag    string
		offset int
	}{
		{"FORM", 0},
		{"XDIR", 8},
		{"INFO", 12},
		{"CAT ", 22},
		{"XMID", 30},
		{"FORM (inner)", 34},
		{"XMID (inner)", 42},
		{"TIMB", 46},
		{"EVNT", 56},
	}

	for _, tt := range tags {
		t.Run(tt.tag, func(t *testing.T) {
			corrupt := bytes.Clone(data)
			copy(corrupt[tt.offset:], "JUNK")

			_, err := ParseContainer(corrupt)
			if !errors.Is(err, music.ErrContainerMismatch) {
				t.Errorf("error = %v, want ErrContainerMismatch", err)
			}
		})
	}
}

func TestParseContainer_MultiTrack(t *testing.T) {
	data := xmitest.ContainerWithTracks(2, xmitest.NewStream().NoteOn(0, 60, 100, 60).Bytes())

	_, err := ParseContainer(data)
	if !errors.Is(err, music.ErrContainerMismatch) {
		t.Errorf("error = %v, want ErrContainerMismatch", err)
	}
}

func TestParseContainer_Truncated(t *testing.T) {
	data := xmitest.Container(nil, xmitest.Timbre{Patch: 1})

	for _, n := range []int{0, 3, 10, 20, 47, len(data) - 5} {
		_, err := ParseContainer(data[:n])
		if !errors.Is(err, music.ErrContainerMismatch) {
			t.Errorf("ParseContainer(data[:%d]) error = %v, want ErrContainerMismatch", n, err)
		}
	}
}

func TestParseContainer_EmptyPayload(t *testing.T) {
	ct, err := ParseContainer(xmitest.Container(nil))
	if err != nil {
		t.Fatalf("ParseContainer failed: %v", err)
	}
	if len(ct.Events) != 0 {
		t.Errorf("len(Events) = %d, want 0", len(ct.Events))
	}
}
