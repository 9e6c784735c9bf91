// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bscalendar provides the Bikram Sambat (BS) month-length table.
//
// BS months are 29 to 32 days long and vary from year to year, so every
// supported year carries its own row of twelve month lengths (Baisakh through
// Chaitra). The table is immutable and safe for concurrent use.
package bscalendar

import (
	"errors"
	"fmt"
)

const (
	// MinYear is the first BS year in the table.
	MinYear = 2000
	// MaxYear is the last BS year in the table.
	MaxYear = 2099
	// MonthsPerYear is the number of months in a BS year.
	MonthsPerYear = 12
	// MaxMonthLength is the longest month length in the table.
	MaxMonthLength = 32
)

// ErrOutOfRange is the error kind returned when a year or month is outside the table.
var ErrOutOfRange = errors.New("out of range")

// OutOfRangeError describes a year or month that is outside the table.
type OutOfRangeError struct {
	// Field is "year" or "month".
	Field string
	// Value is the rejected value.
	Value int
	// Min is the smallest accepted value.
	Min int
	// Max is the largest accepted value.
	Max int
}

// Error implements error.
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("BS %s %d out of range, must be between %d and %d", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap returns ErrOutOfRange so callers can use errors.Is.
func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// MonthLength returns the number of days in the given BS month.
//
// The month is 1-based (1 is Baisakh, 12 is Chaitra).
func MonthLength(year int, month int) (int, error) {
	if err := checkYear(year); err != nil {
		return 0, err
	}
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	return monthLengths[year-MinYear][month-1], nil
}

// YearLength returns the number of days in the given BS year.
func YearLength(year int) (int, error) {
	if err := checkYear(year); err != nil {
		return 0, err
	}
	return yearLengths[year-MinYear], nil
}

// Year returns a copy of the month lengths of the given BS year.
func Year(year int) ([MonthsPerYear]int, error) {
	if err := checkYear(year); err != nil {
		return [MonthsPerYear]int{}, err
	}
	return monthLengths[year-MinYear], nil
}

// DaysBeforeYear returns the number of days from BS MinYear-01-01 to the
// first day of the given year.
//
// MaxYear+1 is accepted and returns the total number of days in the table.
func DaysBeforeYear(year int) (int, error) {
	if year < MinYear || year > MaxYear+1 {
		return 0, &OutOfRangeError{Field: "year", Value: year, Min: MinYear, Max: MaxYear + 1}
	}
	return daysBeforeYear[year-MinYear], nil
}

// TotalDays returns the number of days covered by the table.
func TotalDays() int {
	return daysBeforeYear[numYears]
}

// *** PRIVATE ***

const numYears = MaxYear - MinYear + 1

var (
	// yearLengths is the sum of each row of monthLengths.
	yearLengths = computeYearLengths()
	// daysBeforeYear[i] is the number of days before year MinYear+i.
	daysBeforeYear = computeDaysBeforeYear()
)

func computeYearLengths() [numYears]int {
	var lengths [numYears]int
	for i, months := range monthLengths {
		for _, monthLength := range months {
			lengths[i] += monthLength
		}
	}
	return lengths
}

func computeDaysBeforeYear() [numYears + 1]int {
	var days [numYears + 1]int
	for i, yearLength := range computeYearLengths() {
		days[i+1] = days[i] + yearLength
	}
	return days
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &OutOfRangeError{Field: "year", Value: year, Min: MinYear, Max: MaxYear}
	}
	return nil
}

func checkMonth(month int) error {
	if month < 1 || month > MonthsPerYear {
		return &OutOfRangeError{Field: "month", Value: month, Min: 1, Max: MonthsPerYear}
	}
	return nil
}
