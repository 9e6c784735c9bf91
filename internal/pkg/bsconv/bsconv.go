// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsconv converts dates between the Gregorian (AD) and Bikram Sambat (BS) calendars.
//
// Both calendars are numbered onto a single day line (Rata Die: AD 0001-01-01
// is day 1). AD dates use proleptic Gregorian arithmetic. BS dates are counted
// through the bscalendar month-length table and aligned to the day line by one
// fixed anchor: AD 1943-04-14 is BS 2000-01-01.
//
// Supported inputs are AD years 1943 through 2042 and BS years 2000 through 2099.
// A valid input whose counterpart falls outside the other calendar's window
// fails with ErrResultOutOfRange. All functions are pure and safe for concurrent use.
package bsconv

import (
	"fmt"

	"github.com/bufdev/bsdate/internal/pkg/bscalendar"
)

const (
	// MinADYear is the first supported Gregorian year.
	MinADYear = 1943
	// MaxADYear is the last supported Gregorian year.
	MaxADYear = 2042
	// MinBSYear is the first supported Bikram Sambat year.
	MinBSYear = bscalendar.MinYear
	// MaxBSYear is the last supported Bikram Sambat year.
	MaxBSYear = bscalendar.MaxYear
)

var (
	// EpochAD is the Gregorian side of the anchor.
	EpochAD = NewADDate(1943, 4, 14)
	// EpochBS is the Bikram Sambat side of the anchor, the first day of the table.
	EpochBS = NewBSDate(2000, 1, 1)
)

// ADToBS converts a Gregorian date to Bikram Sambat.
func ADToBS(year int, month int, day int) (Date, error) {
	input := NewADDate(year, month, day)
	dayNumber, err := DayNumber(input)
	if err != nil {
		return Date{}, err
	}
	output, ok := bsFromOffset(dayNumber - epochDayNumber)
	if !ok {
		return Date{}, newResultOutOfRangeError(input, CalendarBS)
	}
	return output, nil
}

// BSToAD converts a Bikram Sambat date to Gregorian.
func BSToAD(year int, month int, day int) (Date, error) {
	input := NewBSDate(year, month, day)
	dayNumber, err := DayNumber(input)
	if err != nil {
		return Date{}, err
	}
	output := adFromOffset(dayNumber - epochDayNumber)
	if output.Year < MinADYear || output.Year > MaxADYear {
		return Date{}, newResultOutOfRangeError(input, CalendarAD)
	}
	return output, nil
}

// Convert converts the date to the other calendar.
func Convert(date Date) (Result, error) {
	var (
		output Date
		err    error
	)
	switch date.Calendar {
	case CalendarAD:
		output, err = ADToBS(date.Year, date.Month, date.Day)
	case CalendarBS:
		output, err = BSToAD(date.Year, date.Month, date.Day)
	default:
		return Result{}, newUnknownCalendarError(date)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Input: date, Output: output}, nil
}

// ConvertDirection converts year, month, and day in the given direction.
func ConvertDirection(direction Direction, year int, month int, day int) (Result, error) {
	return Convert(Date{Calendar: direction.Source(), Year: year, Month: month, Day: day})
}

// DayNumber returns the Rata Die number of a valid date.
//
// For corresponding dates, DayNumber(ad) == DayNumber(bs).
func DayNumber(date Date) (int, error) {
	if err := Validate(date); err != nil {
		return 0, err
	}
	if date.Calendar == CalendarAD {
		return adDayNumber(date.Year, date.Month, date.Day), nil
	}
	// Validate checked the year and month, so the table lookups cannot fail.
	daysBeforeYear, _ := bscalendar.DaysBeforeYear(date.Year)
	daysBeforeMonth := 0
	for month := 1; month < date.Month; month++ {
		monthLength, _ := bscalendar.MonthLength(date.Year, month)
		daysBeforeMonth += monthLength
	}
	return epochDayNumber + daysBeforeYear + daysBeforeMonth + date.Day - 1, nil
}

// Validate checks a date against its calendar's rules and supported window.
//
// The month is checked first, then the year, then the day.
func Validate(date Date) error {
	switch date.Calendar {
	case CalendarAD:
		return ValidateAD(date.Year, date.Month, date.Day)
	case CalendarBS:
		return ValidateBS(date.Year, date.Month, date.Day)
	default:
		return newUnknownCalendarError(date)
	}
}

// ValidateAD checks a Gregorian date.
func ValidateAD(year int, month int, day int) error {
	input := NewADDate(year, month, day)
	if month < 1 || month > 12 {
		return newInvalidMonthError(input)
	}
	if year < MinADYear || year > MaxADYear {
		return newYearOutOfRangeError(input)
	}
	if day < 1 || day > DaysInADMonth(year, month) {
		return newInvalidDayForMonthError(input)
	}
	return nil
}

// ValidateBS checks a Bikram Sambat date against the month-length table.
func ValidateBS(year int, month int, day int) error {
	input := NewBSDate(year, month, day)
	if month < 1 || month > bscalendar.MonthsPerYear {
		return newInvalidMonthError(input)
	}
	monthLength, err := bscalendar.MonthLength(year, month)
	if err != nil {
		// The month is already known to be valid, so this is the year.
		return newYearOutOfRangeError(input)
	}
	if day < 1 || day > monthLength {
		return newInvalidDayForMonthError(input)
	}
	return nil
}

// DaysInADMonth returns the length of a Gregorian month, or 0 for an invalid month.
func DaysInADMonth(year int, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsADLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// IsADLeapYear reports whether a Gregorian year has 366 days.
func IsADLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// *** PRIVATE ***

// epochDayNumber is the Rata Die number of the anchor.
var epochDayNumber = adDayNumber(EpochAD.Year, EpochAD.Month, EpochAD.Day)

// adDayNumber returns the Rata Die number of a Gregorian date with year >= 1.
func adDayNumber(year int, month int, day int) int {
	priorYears := year - 1
	dayNumber := 365*priorYears + priorYears/4 - priorYears/100 + priorYears/400
	for m := 1; m < month; m++ {
		dayNumber += DaysInADMonth(year, m)
	}
	return dayNumber + day
}

// bsFromOffset walks the table from EpochBS by whole years, then whole months.
//
// It returns false if the offset falls outside the table.
func bsFromOffset(offset int) (Date, bool) {
	if offset < 0 || offset >= bscalendar.TotalDays() {
		return Date{}, false
	}
	year := bscalendar.MinYear
	for {
		yearLength, _ := bscalendar.YearLength(year)
		if offset < yearLength {
			break
		}
		offset -= yearLength
		year++
	}
	month := 1
	for {
		monthLength, _ := bscalendar.MonthLength(year, month)
		if offset < monthLength {
			break
		}
		offset -= monthLength
		month++
	}
	return NewBSDate(year, month, offset+1), true
}

// adFromOffset walks the proleptic Gregorian calendar from EpochAD by whole
// years, then whole months. The offset may be negative.
func adFromOffset(offset int) Date {
	// Rebase the offset onto January 1 of the anchor year.
	year := EpochAD.Year
	offset += adDayNumber(EpochAD.Year, EpochAD.Month, EpochAD.Day) - adDayNumber(EpochAD.Year, 1, 1)
	for offset < 0 {
		year--
		offset += adYearLength(year)
	}
	for offset >= adYearLength(year) {
		offset -= adYearLength(year)
		year++
	}
	month := 1
	for offset >= DaysInADMonth(year, month) {
		offset -= DaysInADMonth(year, month)
		month++
	}
	return NewADDate(year, month, offset+1)
}

func adYearLength(year int) int {
	if IsADLeapYear(year) {
		return 366
	}
	return 365
}

func yearBounds(calendar Calendar) (int, int) {
	if calendar == CalendarBS {
		return MinBSYear, MaxBSYear
	}
	return MinADYear, MaxADYear
}

func newUnknownCalendarError(date Date) error {
	return fmt.Errorf("unknown calendar %v for date %s", date.Calendar, date.String())
}
