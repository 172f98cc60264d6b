package schedule

import (
	"time"
)

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval normalises both ends to UTC and rejects empty or inverted spans.
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether the two intervals share any instant. An interval
// ending at T does not overlap one starting at T.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// HasConflict reports whether query overlaps any of the existing intervals.
// It depends on nothing but its arguments.
func HasConflict(existing []Interval, query Interval) bool {
	for _, e := range existing {
		if e.Overlaps(query) {
			return true
		}
	}
	return false
}
