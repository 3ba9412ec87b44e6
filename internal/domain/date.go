package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 calendar day layout used in the persisted state
const DateFormat = "2006-01-02"

// readDateFormat also accepts single-digit months and days
const readDateFormat = "2006-1-2"

// Date represents a calendar day with no time component
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
// Out-of-range values roll over the same way time.Date does (e.g. Jan 32 is Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a "YYYY-MM-DD" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d.y == 0 && d.m == 0 && d.d == 0 }
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// AddMonths returns the date n calendar months later
func (d Date) AddMonths(n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) }

// AddYears returns the date n calendar years later
func (d Date) AddYears(n int) Date { return NewDate(d.y+n, d.m, d.d) }

// String formats the date as YYYY-MM-DD. The zero date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

// time returns midnight UTC of that day
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// MarshalJSON implements the json.Marshaler interface
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// An empty string decodes to the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
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
