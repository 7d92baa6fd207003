// Package timewindow provides half-open interval arithmetic on HH:mm-quantized
// times of day. A window [start, end) never crosses midnight; two windows on
// the same date conflict iff their intervals strictly overlap, so windows that
// merely touch (a.End == b.Start) do not conflict.
package timewindow

import (
	"fmt"
	"time"
)

// Minutes is a minute-of-day offset in the range [0, 1440].
type Minutes int

const MinutesPerDay Minutes = 24 * 60

// MalformedTimeError reports an input that is not a valid HH:mm time.
type MalformedTimeError struct {
	Input string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time %q: expected HH:mm", e.Input)
}

// Parse converts an "HH:mm" string to a minute-of-day offset.
// Hours must be 00-23 and minutes 00-59; anything else fails with
// *MalformedTimeError.
func Parse(s string) (Minutes, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, &MalformedTimeError{Input: s}
	}

	hour, ok := parseTwoDigits(s[0], s[1])
	if !ok || hour > 23 {
		return 0, &MalformedTimeError{Input: s}
	}
	minute, ok := parseTwoDigits(s[3], s[4])
	if !ok || minute > 59 {
		return 0, &MalformedTimeError{Input: s}
	}

	return Minutes(hour*60 + minute), nil
}

func parseTwoDigits(hi, lo byte) (int, bool) {
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return int(hi-'0')*10 + int(lo-'0'), true
}

// Format renders a minute-of-day offset as "HH:mm".
func Format(m Minutes) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// InRange reports whether t falls within the half-open range [start, end).
func InRange(t, start, end Minutes) bool {
	return t >= start && t < end
}

// DateOnly truncates t to UTC midnight. All windows store their date in this
// normalized form so dates compare with simple equality.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Window is a half-open [Start, End) interval on a single calendar date.
type Window struct {
	Date  time.Time
	Start Minutes
	End   Minutes
}

// New builds a Window, normalizing the date to UTC midnight.
// It fails when the interval does not satisfy 0 <= start < end <= 1440.
func New(date time.Time, start, end Minutes) (Window, error) {
	if start < 0 || end > MinutesPerDay || start >= end {
		return Window{}, fmt.Errorf("invalid window [%s, %s): start must precede end within a single day",
			Format(start), Format(end))
	}
	return Window{Date: DateOnly(date), Start: start, End: end}, nil
}

// ParseWindow builds a Window from "HH:mm" boundary strings.
func ParseWindow(date time.Time, start, end string) (Window, error) {
	s, err := Parse(start)
	if err != nil {
		return Window{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Window{}, err
	}
	return New(date, s, e)
}

// Overlaps reports whether the two windows conflict: same date and strictly
// overlapping intervals. Touching windows do not overlap.
func (w Window) Overlaps(o Window) bool {
	if !w.Date.Equal(o.Date) {
		return false
	}
	return w.Start < o.End && w.End > o.Start
}

// Duration returns the window length in hours. Half-hour windows yield exact
// fractions (30 minutes -> 0.5).
func (w Window) Duration() float64 {
	return float64(w.End-w.Start) / 60
}

// ContainedIn reports whether the window lies fully inside [start, end).
func (w Window) ContainedIn(start, end Minutes) bool {
	return w.Start >= start && w.End <= end
}

// StartString and EndString render the window boundaries as "HH:mm".
func (w Window) StartString() string { return Format(w.Start) }
func (w Window) EndString() string   { return Format(w.End) }
