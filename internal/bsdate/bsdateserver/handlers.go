// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsdateserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bufdev/bsdate/internal/pkg/bscalendar"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/pkg/datepb"
	"github.com/bufdev/bsdate/internal/standard/xtime"
	"github.com/labstack/echo/v4"
)

var errNonIntegerParam = errors.New("year, month and day must be integers")

// envelope is the JSON body of every API response except /health and /metrics.
type envelope struct {
	Success bool            `json:"success"`
	Input   json.RawMessage `json:"input,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// calendarResponse is the JSON body of /api/calendar/:year.
type calendarResponse struct {
	Success bool  `json:"success"`
	Year    int   `json:"year"`
	Months  []int `json:"months"`
	Days    int   `json:"days"`
}

func failureEnvelope(message string) envelope {
	return envelope{Success: false, Error: message}
}

func (s *server) handleADToBS(c echo.Context) error {
	return s.handleConvert(c, bsconv.DirectionADToBS)
}

func (s *server) handleBSToAD(c echo.Context) error {
	return s.handleConvert(c, bsconv.DirectionBSToAD)
}

func (s *server) handleConvert(c echo.Context, direction bsconv.Direction) error {
	values, err := intParams(c, "year", "month", "day")
	if err != nil {
		s.metrics.observeConversion(direction, err)
		return c.JSON(http.StatusBadRequest, failureEnvelope(err.Error()))
	}
	result, err := bsconv.ConvertDirection(direction, values[0], values[1], values[2])
	s.metrics.observeConversion(direction, err)
	if err != nil {
		return s.conversionError(c, err)
	}
	return s.writeResult(c, result)
}

func (s *server) handleToday(c echo.Context) error {
	today := xtime.TimeToDate(s.now().In(s.location))
	result, err := bsconv.ADToBS(today.Year, int(today.Month), today.Day)
	s.metrics.observeConversion(bsconv.DirectionADToBS, err)
	if err != nil {
		return s.conversionError(c, err)
	}
	return s.writeResult(c, bsconv.Result{
		Input:  bsconv.NewADDate(today.Year, int(today.Month), today.Day),
		Output: result,
	})
}

func (s *server) handleCalendar(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, failureEnvelope("year must be an integer"))
	}
	// Reuse the converter's year validation for its message.
	if err := bsconv.ValidateBS(year, 1, 1); err != nil {
		return s.conversionError(c, err)
	}
	monthLengths, err := bscalendar.Year(year)
	if err != nil {
		return err
	}
	yearLength, err := bscalendar.YearLength(year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendarResponse{
		Success: true,
		Year:    year,
		Months:  monthLengths[:],
		Days:    yearLength,
	})
}

func (s *server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// conversionError writes a 400 envelope for conversion errors and defers
// anything else to the error handler.
func (s *server) conversionError(c echo.Context, err error) error {
	if bsconv.IsConversionError(err) {
		return c.JSON(http.StatusBadRequest, failureEnvelope(err.Error()))
	}
	return err
}

func (s *server) writeResult(c echo.Context, result bsconv.Result) error {
	input, err := marshalDate(result.Input)
	if err != nil {
		return err
	}
	output, err := marshalDate(result.Output)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Input:   input,
		Result:  output,
	})
}

func marshalDate(date bsconv.Date) (json.RawMessage, error) {
	protoDate, err := datepb.DateToProto(date)
	if err != nil {
		return nil, err
	}
	return datepb.MarshalJSON(protoDate)
}

func intParams(c echo.Context, names ...string) ([]int, error) {
	values := make([]int, len(names))
	for i, name := range names {
		value, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return nil, errNonIntegerParam
		}
		values[i] = value
	}
	return values, nil
}
