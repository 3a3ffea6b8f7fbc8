// Package interval models half-open whole-day date ranges [start, end).
package interval

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("end date must be after start date")

type Range struct {
	Start time.Time
	End   time.Time
}

// New normalizes both bounds to whole days and rejects empty or inverted ranges.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if !r.Start.Before(r.End) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Day truncates t to midnight UTC of the calendar date t carries in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc as a UTC-midnight value.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least one day.
// Touching ranges (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (r Range) Overlaps(o Range) bool {
	return Overlaps(r.Start, r.End, o.Start, o.End)
}

// Covers reports whether day falls inside the range.
func (r Range) Covers(day time.Time) bool {
	d := Day(day)
	return !r.Start.After(d) && d.Before(r.End)
}

func (r Range) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

func (r Range) String() string {
	return "[" + r.Start.Format(DateLayout) + ", " + r.End.Format(DateLayout) + ")"
}
