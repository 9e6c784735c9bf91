// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsconv

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMonth is the error kind for a month outside 1..12.
	ErrInvalidMonth = errors.New("invalid month")
	// ErrInvalidDayForMonth is the error kind for a day that does not exist in its month.
	ErrInvalidDayForMonth = errors.New("invalid day for month")
	// ErrYearOutOfRange is the error kind for an input year outside the supported window.
	ErrYearOutOfRange = errors.New("year out of range")
	// ErrResultOutOfRange is the error kind for a converted date outside the
	// supported window of the target calendar.
	ErrResultOutOfRange = errors.New("result out of range")
)

// Error is returned by every failed validation or conversion.
//
// Error unwraps to exactly one of the Err* kinds above.
type Error struct {
	// Kind is one of ErrInvalidMonth, ErrInvalidDayForMonth, ErrYearOutOfRange, ErrResultOutOfRange.
	Kind error
	// Input is the date that was rejected or could not be converted.
	Input Date
	// message is the user-facing message.
	message string
}

// Error implements error.
func (e *Error) Error() string {
	return e.message
}

// Unwrap returns the kind of the error.
func (e *Error) Unwrap() error {
	return e.Kind
}

// IsConversionError returns true if err is a validation or range error from this package.
func IsConversionError(err error) bool {
	var conversionError *Error
	return errors.As(err, &conversionError)
}

// *** PRIVATE ***

func newInvalidMonthError(input Date) *Error {
	return &Error{
		Kind:    ErrInvalidMonth,
		Input:   input,
		message: "month must be between 1 and 12",
	}
}

func newInvalidDayForMonthError(input Date) *Error {
	return &Error{
		Kind:    ErrInvalidDayForMonth,
		Input:   input,
		message: fmt.Sprintf("day %d does not exist in month %d", input.Day, input.Month),
	}
}

func newYearOutOfRangeError(input Date) *Error {
	minYear, maxYear := yearBounds(input.Calendar)
	return &Error{
		Kind:    ErrYearOutOfRange,
		Input:   input,
		message: fmt.Sprintf("%s year must be between %d and %d", input.Calendar, minYear, maxYear),
	}
}

func newResultOutOfRangeError(input Date, target Calendar) *Error {
	minYear, maxYear := yearBounds(target)
	return &Error{
		Kind:  ErrResultOutOfRange,
		Input: input,
		message: fmt.Sprintf(
			"%s %s converts to a date outside the supported %s range %d-%d",
			input.Calendar,
			input.String(),
			target,
			minYear,
			maxYear,
		),
	}
}
