// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the default table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
}

// Records describes how to render a list of objects as rows.
type Records[O any] struct {
	// Headers are the column headers for table and CSV output.
	Headers []string
	// Row renders a single object as a row for table and CSV output.
	Row func(O) []string
	// Totals is an optional totals row written after a blank line in table output.
	Totals []string
}

// WriteRecords writes the objects in the given format.
//
// Table and CSV output use Headers and Row. JSON output writes each object on its own line.
func WriteRecords[O any](writer io.Writer, format Format, records Records[O], objects ...O) error {
	switch format {
	case FormatTable:
		rows := make([][]string, 0, len(objects))
		for _, object := range objects {
			rows = append(rows, records.Row(object))
		}
		if records.Totals != nil {
			return WriteTableWithTotals(writer, records.Headers, rows, records.Totals)
		}
		return WriteTable(writer, records.Headers, rows)
	case FormatCSV:
		csvRecords := make([][]string, 0, len(objects)+1)
		csvRecords = append(csvRecords, records.Headers)
		for _, object := range objects {
			csvRecords = append(csvRecords, records.Row(object))
		}
		return WriteCSVRecords(writer, csvRecords)
	case FormatJSON:
		return WriteJSON(writer, objects...)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteTable writes tabular data to the writer using tabwriter for aligned columns.
func WriteTable(writer io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteTableWithTotals writes a table followed by a blank line and a totals row,
// all through the same tabwriter so columns align between data and totals.
func WriteTableWithTotals(writer io.Writer, headers []string, rows [][]string, totalsRow []string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	// Write a blank separator line with tabs to preserve column alignment.
	blankRow := make([]string, len(headers))
	if _, err := fmt.Fprintln(tw, strings.Join(blankRow, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(totalsRow, "\t")); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteCSVRecords writes CSV records to the writer.
func WriteCSVRecords(writer io.Writer, records [][]string) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.WriteAll(records); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	encoder := json.NewEncoder(writer)
	for _, object := range objects {
		// Encode appends a newline after each object.
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return nil
}

// *** PRIVATE ***

func writeRows(writer io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
