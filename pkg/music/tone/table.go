// Package tone renders note events to mono 16-bit PCM with plain sine tones.
// It is the fallback used when no MIDI device or SoundFont is available.
package tone

import (
	"fmt"
	"math"
	"sync"
)

// Tuning selects how the frequency table is computed.
type Tuning int

const (
	// Legacy reproduces the table the game shipped with:
	// 440/32 * ((n-9)/12)^2 with (n-9)/12 truncated to an integer.
	// It is a step function, not a musical scale.
	Legacy Tuning = iota

	// EqualTempered is standard A440 tuning: 440 * 2^((n-69)/12).
	EqualTempered
)

// ParseTuning converts "legacy" or "equal" to a Tuning.
func ParseTuning(s string) (Tuning, error) {
	switch s {
	case "legacy", "":
		return Legacy, nil
	case "equal":
		return EqualTempered, nil
	}
	return 0, fmt.Errorf("invalid tuning: %s (must be legacy or equal)", s)
}

func (t Tuning) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case EqualTempered:
		return "equal"
	}
	return fmt.Sprintf("Tuning(%d)", int(t))
}

// Table maps a MIDI note number to a frequency in Hz.
type Table [128]float64

var (
	legacyTable = sync.OnceValue(func() *Table {
		var t Table
		for x := range t {
			step := (x - 9) / 12
			t[x] = 440.0 / 32 * float64(step*step)
		}
		return &t
	})

	equalTable = sync.OnceValue(func() *Table {
		var t Table
		for x := range t {
			t[x] = 440 * math.Pow(2, float64(x-69)/12)
		}
		return &t
	})
)

// TableFor returns the shared, precomputed table for a tuning. Callers must
// not modify it.
func TableFor(t Tuning) *Table {
	if t == EqualTempered {
		return equalTable()
	}
	return legacyTable()
}

// Frequency returns the frequency of a note.
func (t *Table) Frequency(note uint8) float64 {
	return t[note&0x7F]
}
