package wallet

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the format used to represent dates as strings, and the date
// part of every price book key.
const DateFormat = "2006-01-02"

// Date represents a date with day-level granularity.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf returns the UTC calendar date of an instant.
//
// Price lookups are keyed by UTC date, so this is the only way timestamps are
// ever reduced to days.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Date())
}

// Today returns the current UTC date.
func Today() Date { return DateOf(time.Now()) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the canonical instant of the day, midnight UTC.
func (d Date) Time() time.Time { return d.time() }

// Unix returns the Unix time of midnight UTC of that day.
func (d Date) Unix() int64 { return d.time().Unix() }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// ParseDate parses a Date from a "YYYY-MM-DD" string.
func ParseDate(str string) (Date, error) {
	on, err := time.Parse(DateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// UnmarshalJSON implements the json specific way to unmarshal a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	on, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = on
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	str := d.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshal/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
