package playback

import (
	"bytes"
	"testing"
)

func TestMonoToStereo(t *testing.T) {
	got := MonoToStereo([]int16{1, -2, 0x1234})
	want := []byte{
		0x01, 0x00, 0x01, 0x00,
		0xFE, 0xFF, 0xFE, 0xFF,
		0x34, 0x12, 0x34, 0x12,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("MonoToStereo = % x, want % x", got, want)
	}

	if len(MonoToStereo(nil)) != 0 {
		t.Error("MonoToStereo(nil) should be empty")
	}
}
