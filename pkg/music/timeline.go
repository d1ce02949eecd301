package music

import (
	"iter"
	"slices"
)

// Timeline is an immutable list of events sorted by start time.
// Events sharing a start time keep the order in which they were produced.
type Timeline struct {
	events []Event
}

// NewTimeline sorts events by start time and wraps them in a Timeline.
// The slice is copied; the caller may reuse it.
func NewTimeline(events []Event) *Timeline {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.StartTime() < b.StartTime():
			return -1
		case a.StartTime() > b.StartTime():
			return 1
		}
		return 0
	})
	return &Timeline{events: sorted}
}

// Empty returns a timeline without events.
func Empty() *Timeline {
	return &Timeline{}
}

// Len returns the number of events.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}

// At returns the i-th event.
func (t *Timeline) At(i int) Event {
	return t.events[i]
}

// Events returns a copy of the events.
func (t *Timeline) Events() []Event {
	if t == nil {
		return nil
	}
	return slices.Clone(t.events)
}

// All iterates over the events in order.
func (t *Timeline) All() iter.Seq2[int, Event] {
	return func(yield func(int, Event) bool) {
		if t == nil {
			return
		}
		for i, e := range t.events {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Duration returns the start time of the last event in milliseconds.
func (t *Timeline) Duration() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.events[len(t.events)-1].StartTime()
}

// Channels returns the distinct channels used by the timeline in ascending order.
func (t *Timeline) Channels() []uint8 {
	var seen [16]bool
	for _, e := range t.All() {
		seen[e.Chan()&0x0F] = true
	}
	var chans []uint8
	for ch, ok := range seen {
		if ok {
			chans = append(chans, uint8(ch))
		}
	}
	return chans
}
