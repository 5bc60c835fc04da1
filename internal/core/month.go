package core

import (
	"fmt"
	"strconv"
	"time"
)

// MonthKey identifies a calendar year and month. Its canonical text form is YYYY-MM.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf truncates t to its calendar month, in t's own location.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses the YYYY-MM form.
func ParseMonthKey(s string) (MonthKey, error) {
	var k MonthKey
	if len(s) != 7 || s[4] != '-' {
		return k, fmt.Errorf("invalid month key %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil || year < 0 {
		return k, fmt.Errorf("invalid month key %q: bad year", s)
	}
	month, err := strconv.Atoi(s[5:])
	if err != nil || month < 1 || month > 12 {
		return k, fmt.Errorf("invalid month key %q: %w", s, ErrInvalidDate)
	}
	k.Year, k.Month = year, time.Month(month)
	return k, nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Start returns the first instant of the month in loc.
func (k MonthKey) Start(loc *time.Location) time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, loc)
}

func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
