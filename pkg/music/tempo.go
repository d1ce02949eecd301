package music

const (
	// DefaultTempo is the tempo in effect until a set-tempo meta event
	// arrives: 500000 microseconds per quarter note (120 BPM).
	DefaultTempo = 500000

	// TicksPerSecond is the fixed XMI timebase.
	TicksPerSecond = 120
)

// TicksPerQuarterNote returns floor(TicksPerSecond * tempo / 1e6), never less than 1.
func TicksPerQuarterNote(tempo int) int {
	tpqn := TicksPerSecond * tempo / 1_000_000
	if tpqn < 1 {
		return 1
	}
	return tpqn
}

// TicksToMs converts an XMI tick count to milliseconds under the given tempo
// (microseconds per quarter note).
//
// Example: at DefaultTempo a quarter note is 60 ticks, so TicksToMs(60,
// DefaultTempo) is 500.
func TicksToMs(ticks, tempo int) float64 {
	return float64(ticks) / float64(TicksPerQuarterNote(tempo)) * float64(tempo) / 1000
}
