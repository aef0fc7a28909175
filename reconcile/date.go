package reconcile

import "time"

// =============================================================================
// DATE - Day-granular calendar date (enrollment and activity dates carry
// no time component)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
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
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}
