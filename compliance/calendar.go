/*
calendar.go - Calendar dates for work-day sequencing

PURPOSE:
  Labor-law rules care about calendar days, not instants. WorkDate wraps
  time.Time pinned to midnight UTC so that date arithmetic and equality
  behave as civil-date operations regardless of the caller's zone.

KEY CONCEPTS:
  - WorkDate: a single calendar day (day granularity only)
  - Consecutive runs: the seventh-consecutive-day rule needs to know
    whether one date immediately follows another

USAGE:
  d := compliance.NewWorkDate(2025, time.March, 3)
  next := d.AddDays(1)
  next.IsNextDayOf(d)  // true

SEE ALSO:
  - california.go: IdentifySeventhConsecutiveDay scans WorkDate sequences
*/
package compliance

import (
	"sort"
	"time"
)

// WorkDate represents a single calendar day. The zero value is the zero time.
type WorkDate struct {
	Time time.Time
}

// NewWorkDate creates a WorkDate for the given calendar day.
func NewWorkDate(year int, month time.Month, day int) WorkDate {
	return WorkDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) WorkDate {
	return NewWorkDate(t.Year(), t.Month(), t.Day())
}

// ParseWorkDate parses a date in YYYY-MM-DD form.
func ParseWorkDate(s string) (WorkDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return WorkDate{}, NewInvalidInput("date", s, "expected YYYY-MM-DD")
	}
	return DateOf(t), nil
}

// String returns the date in YYYY-MM-DD form.
func (d WorkDate) String() string {
	return d.Time.Format("2006-01-02")
}

// IsZero reports whether the date is unset.
func (d WorkDate) IsZero() bool {
	return d.Time.IsZero()
}

// Equal reports whether two dates fall on the same calendar day.
func (d WorkDate) Equal(other WorkDate) bool {
	return d.Time.Equal(other.Time)
}

// Before reports whether d precedes other.
func (d WorkDate) Before(other WorkDate) bool {
	return d.Time.Before(other.Time)
}

// AddDays returns the date n days later (negative n goes back).
func (d WorkDate) AddDays(n int) WorkDate {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// IsNextDayOf reports whether d is exactly one calendar day after prev.
// This is the consecutiveness test for seventh-day detection.
func (d WorkDate) IsNextDayOf(prev WorkDate) bool {
	return d.Equal(prev.AddDays(1))
}

// SortWorkDates sorts dates ascending in place.
func SortWorkDates(dates []WorkDate) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

// YearsBetween returns full calendar years elapsed from a birth date to an
// as-of date. Used to derive an employee's age for child-labor checks.
func YearsBetween(from, to WorkDate) int {
	years := to.Time.Year() - from.Time.Year()
	anniversary := NewWorkDate(from.Time.Year()+years, from.Time.Month(), from.Time.Day())
	if to.Before(anniversary) {
		years--
	}
	return years
}
