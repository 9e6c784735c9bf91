// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package datepb provides conversion functions between bsconv.Date and google.type.Date.
//
// google.type.Date carries no calendar of its own. The calendar is supplied by
// the caller and travels out of band (for example, in the API path).
package datepb

import (
	"fmt"
	"math"

	"buf.build/go/protovalidate"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	typedate "google.golang.org/genproto/googleapis/type/date"
	"google.golang.org/protobuf/encoding/protojson"
)

// NewProtoDate creates a new validated proto Date from year, month, and day.
func NewProtoDate(year int, month int, day int) (*typedate.Date, error) {
	for _, value := range []int{year, month, day} {
		if value < 0 || value > math.MaxInt32 {
			return nil, fmt.Errorf("date component %d out of range", value)
		}
	}
	protoDate := &typedate.Date{
		Year:  int32(year),
		Month: int32(month),
		Day:   int32(day),
	}
	if err := protovalidate.Validate(protoDate); err != nil {
		return nil, err
	}
	return protoDate, nil
}

// DateToProto converts a bsconv.Date to a validated proto Date, dropping the calendar.
func DateToProto(date bsconv.Date) (*typedate.Date, error) {
	return NewProtoDate(date.Year, date.Month, date.Day)
}

// ProtoToDate converts a validated proto Date to a bsconv.Date of the given calendar.
//
// Calendar rules are not checked here; use bsconv.Validate.
func ProtoToDate(calendar bsconv.Calendar, protoDate *typedate.Date) (bsconv.Date, error) {
	if protoDate == nil {
		return bsconv.Date{}, fmt.Errorf("nil %s date", calendar)
	}
	if err := protovalidate.Validate(protoDate); err != nil {
		return bsconv.Date{}, err
	}
	return bsconv.Date{
		Calendar: calendar,
		Year:     int(protoDate.GetYear()),
		Month:    int(protoDate.GetMonth()),
		Day:      int(protoDate.GetDay()),
	}, nil
}

// MarshalJSON marshals a proto Date to JSON using proto field names.
func MarshalJSON(protoDate *typedate.Date) ([]byte, error) {
	return (protojson.MarshalOptions{UseProtoNames: true}).Marshal(protoDate)
}

// UnmarshalJSON unmarshals JSON data into a new proto Date.
//
// Unknown fields are ignored so that API envelopes may grow.
func UnmarshalJSON(data []byte) (*typedate.Date, error) {
	protoDate := &typedate.Date{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, protoDate); err != nil {
		return nil, err
	}
	return protoDate, nil
}
