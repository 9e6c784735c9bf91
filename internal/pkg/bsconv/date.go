// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsconv

import (
	"fmt"
	"strconv"
	"strings"
)

// Calendar identifies the calendar a Date belongs to.
type Calendar int

const (
	// CalendarAD is the proleptic Gregorian calendar.
	CalendarAD Calendar = iota + 1
	// CalendarBS is the Bikram Sambat calendar.
	CalendarBS
)

// String implements fmt.Stringer.
func (c Calendar) String() string {
	switch c {
	case CalendarAD:
		return "AD"
	case CalendarBS:
		return "BS"
	default:
		return fmt.Sprintf("Calendar(%d)", int(c))
	}
}

// Other returns the calendar a Date of this calendar converts to.
func (c Calendar) Other() Calendar {
	if c == CalendarAD {
		return CalendarBS
	}
	return CalendarAD
}

// Direction is a conversion direction as it appears in API paths.
type Direction string

const (
	// DirectionADToBS converts Gregorian dates to Bikram Sambat.
	DirectionADToBS Direction = "ad-to-bs"
	// DirectionBSToAD converts Bikram Sambat dates to Gregorian.
	DirectionBSToAD Direction = "bs-to-ad"
)

// ParseDirection parses "ad-to-bs" or "bs-to-ad" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirectionADToBS:
		return DirectionADToBS, nil
	case DirectionBSToAD:
		return DirectionBSToAD, nil
	default:
		return "", fmt.Errorf("unknown direction %q, must be one of: %s, %s", s, DirectionADToBS, DirectionBSToAD)
	}
}

// Source returns the calendar of the input date for this direction.
func (d Direction) Source() Calendar {
	if d == DirectionBSToAD {
		return CalendarBS
	}
	return CalendarAD
}

// Date is a day in either the AD or the BS calendar.
//
// Month and Day are 1-based. A Date is a plain value; use Validate to check it.
type Date struct {
	Calendar Calendar
	Year     int
	Month    int
	Day      int
}

// NewADDate returns a Gregorian Date. It does not validate.
func NewADDate(year int, month int, day int) Date {
	return Date{Calendar: CalendarAD, Year: year, Month: month, Day: day}
}

// NewBSDate returns a Bikram Sambat Date. It does not validate.
func NewBSDate(year int, month int, day int) Date {
	return Date{Calendar: CalendarBS, Year: year, Month: month, Day: day}
}

// String returns the date in YYYY-MM-DD form, without the calendar tag.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Format formats the date with a layout containing the tokens YYYY, MM, and DD.
//
// For example, "DD-MM-YYYY" formats BS 2081-06-29 as "29-06-2081".
func (d Date) Format(layout string) string {
	return strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", d.Year),
		"MM", fmt.Sprintf("%02d", d.Month),
		"DD", fmt.Sprintf("%02d", d.Day),
	).Replace(layout)
}

// ParseDate parses a YYYY-MM-DD (or YYYY/MM/DD) string into a Date of the given calendar.
//
// The separator is the first '-' or '/' in the string and must be used twice.
// Every field must be one or more ASCII digits. Only the shape is checked.
// Use Validate for calendar rules.
func ParseDate(calendar Calendar, s string) (Date, error) {
	trimmed := strings.TrimSpace(s)
	separatorIndex := strings.IndexAny(trimmed, "-/")
	if separatorIndex < 0 {
		return Date{}, newParseDateError(s)
	}
	fields := strings.Split(trimmed, trimmed[separatorIndex:separatorIndex+1])
	if len(fields) != 3 {
		return Date{}, newParseDateError(s)
	}
	values := make([]int, 3)
	for i, field := range fields {
		if !isDigits(field) {
			return Date{}, newParseDateError(s)
		}
		value, err := strconv.Atoi(field)
		if err != nil {
			return Date{}, newParseDateError(s)
		}
		values[i] = value
	}
	return Date{Calendar: calendar, Year: values[0], Month: values[1], Day: values[2]}, nil
}

// Result is the outcome of a single conversion.
type Result struct {
	Input  Date
	Output Date
}

// *** PRIVATE ***

func newParseDateError(s string) error {
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
