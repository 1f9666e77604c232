package reserve

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar point (reservations are whole-day bookings)
// =============================================================================

// Date is a calendar day in UTC. All reservation boundaries are inclusive
// calendar dates; there is no sub-day granularity anywhere in the system.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format(dateLayout) }

// Min/Max
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the exclusive day difference to - from.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DateOf(t)
}

// =============================================================================
// DATE SPAN - Inclusive [Start, End] interval, the core primitive
// =============================================================================

// DateSpan is an inclusive calendar interval. Both conflict detection and
// statistics aggregation operate on this one primitive, but with different
// boundary rules (see OverlapsStrict vs OverlapsInclusive vs the merge rule
// in merge.go). The asymmetry is deliberate and load-bearing: touching
// endpoints are not a conflict, yet they do merge into one usage run.
type DateSpan struct {
	Start Date
	End   Date
}

func NewDateSpan(start, end Date) (DateSpan, error) {
	if end.Before(start) {
		return DateSpan{}, ErrInvalidSpan
	}
	return DateSpan{Start: start, End: end}, nil
}

// DurationDays is the booking duration as the system counts it:
// the exclusive date difference, with same-day bookings counted as 1.
func (s DateSpan) DurationDays() int {
	d := DaysBetween(s.Start, s.End)
	if d < 1 {
		return 1
	}
	return d
}

// InclusiveDays counts every calendar day the span covers.
func (s DateSpan) InclusiveDays() int {
	return DaysBetween(s.Start, s.End) + 1
}

// OverlapsStrict is the conflict-detection boundary rule:
// s1 < e2 && s2 < e1. A span whose end equals another's start does NOT
// conflict with it.
func (s DateSpan) OverlapsStrict(other DateSpan) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// OverlapsInclusive is the heatmap pair rule: s1 <= e2 && s2 <= e1.
// Touching endpoints DO count here.
func (s DateSpan) OverlapsInclusive(other DateSpan) bool {
	return s.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(s.End)
}

// Clip restricts the span to the given bounds. ok is false when nothing
// of the span survives inside the bounds.
func (s DateSpan) Clip(bounds DateSpan) (DateSpan, bool) {
	start := MaxDate(s.Start, bounds.Start)
	end := MinDate(s.End, bounds.End)
	if start.After(end) {
		return DateSpan{}, false
	}
	return DateSpan{Start: start, End: end}, true
}

func (s DateSpan) Contains(d Date) bool {
	return d.AfterOrEqual(s.Start) && d.BeforeOrEqual(s.End)
}

func (s DateSpan) String() string {
	return s.Start.String() + " - " + s.End.String()
}

// MonthSpan returns the full span of a calendar month.
func MonthSpan(year int, month time.Month) DateSpan {
	return DateSpan{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}
