package mod

// periodTable lists the Amiga periods of five octaves, from C-0 down to B-4
// in the ProTracker numbering, in descending order.
var periodTable = [60]uint16{
	1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 906,
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	107, 101, 95, 90, 85, 80, 75, 71, 67, 63, 60, 57,
}

// noteBase is the MIDI note of the first period table entry.
const noteBase = 72

// PeriodToNote translates an Amiga period to a MIDI note number. The first
// table entry not greater than period selects the note. A zero period, a
// period below every entry, or a result above 127 reports no note.
func PeriodToNote(period uint16) (uint8, bool) {
	if period == 0 {
		return 0, false
	}
	for i, p := range periodTable {
		if p <= period {
			note := noteBase + i
			if note > 127 {
				return 0, false
			}
			return uint8(note), true
		}
	}
	return 0, false
}
