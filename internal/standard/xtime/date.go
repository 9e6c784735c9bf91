// Copyright 2026 Peter Edge
//
// All rights reserved.

// Originally copied from https://github.com/googleapis/google-cloud-go/blob/v0.116.0/civil/civil.go
// See https://github.com/googleapis/google-cloud-go/blob/v0.116.0/LICENSE.

// Package xtime provides extensions to the standard time package.
package xtime

import (
	"time"
)

// Date is a Gregorian calendar date with no time zone.
//
// This type does not include location information, and therefore does not
// describe a unique 24-hour timespan.
type Date struct {
	Year  int        // Year (e.g., 2014).
	Month time.Month // Month of the year (January = 1, ...).
	Day   int        // Day of the month, starting at 1.
}

// TimeToDate returns the Date in which a time occurs in that time's location.
func TimeToDate(t time.Time) Date {
	var d Date
	d.Year, d.Month, d.Day = t.Date()
	return d
}

// Today returns the current date in the given location.
func Today(location *time.Location) Date {
	return TimeToDate(time.Now().In(location))
}
