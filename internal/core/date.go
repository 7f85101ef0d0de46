package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day at UTC midnight.
type Date struct {
	time.Time
}

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be between 1900 and 2100")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar day in local time.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// ClampDate builds a date, moving day back to the last day of the month when
// the month is shorter (e.g. day 31 in April becomes April 30).
func ClampDate(year, month, day int) Date {
	// normalize month overflow first (month 13 -> January next year)
	first := NewDate(year, month, 1)
	last := DaysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(first.Year(), first.Month(), day)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// AddMonths moves n calendar months, clamping to the end of the target month
// (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	return ClampDate(d.Year(), d.Month()+n, d.Day())
}

// AddYears moves n calendar years, clamping Feb 29 to Feb 28.
func (d Date) AddYears(n int) Date {
	return ClampDate(d.Year()+n, d.Month(), d.Day())
}

// SameMonth reports whether d and o fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// InMonth reports whether d falls in year/month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// OnOrBeforeMonth reports whether d's month is year/month or earlier.
func (d Date) OnOrBeforeMonth(year, month int) bool {
	return d.Year() < year || (d.Year() == year && d.Month() <= month)
}

// DaysUntil returns the whole days from d to o (negative when o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidatePeriod checks a year/month pair coming from the outside world.
func ValidatePeriod(year, month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return ValidateYear(year)
}

// ValidateYear checks the supported year range.
func ValidateYear(year int) error {
	if year < 1900 || year > 2100 {
		return ErrInvalidYear
	}
	return nil
}

// MonthRange returns the half-open range [first of month, first of next month).
func MonthRange(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	return start, start.AddMonths(1)
}

// MonthLabel formats year/month as YYYY-MM.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}
