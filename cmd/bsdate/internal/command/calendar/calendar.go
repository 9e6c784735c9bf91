// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package calendar implements the "calendar" command.
package calendar

import (
	"context"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bscalendar"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// monthNames are the romanized Bikram Sambat month names.
var monthNames = [bscalendar.MonthsPerYear]string{
	"Baisakh",
	"Jestha",
	"Asar",
	"Shrawan",
	"Bhadra",
	"Asoj",
	"Kartik",
	"Mangsir",
	"Poush",
	"Magh",
	"Falgun",
	"Chaitra",
}

// NewCommand returns a new calendar command that prints the month lengths of a BS year.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " YEAR",
		Short: "Print the month lengths of a BS year",
		Long: `Print the month lengths of a BS year.

Each row shows the month, its length in days, and the AD date of its first day.`,
		Args: appcmd.ExactArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	bsdatecmd.OutputFlags
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.OutputFlags.Bind(flagSet)
}

// month is a single month of a BS year as printed by the calendar command.
type month struct {
	Month   int    `json:"month"`
	Name    string `json:"name"`
	Days    int    `json:"days"`
	StartAD string `json:"start_ad,omitempty"`
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := flags.ParseFormat()
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(container.Arg(0))
	if err != nil {
		return appcmd.NewInvalidArgumentErrorf("year must be an integer, got %q", container.Arg(0))
	}
	if err := bsconv.ValidateBS(year, 1, 1); err != nil {
		return bsdatecmd.ConversionError(err)
	}
	monthLengths, err := bscalendar.Year(year)
	if err != nil {
		return err
	}
	yearLength, err := bscalendar.YearLength(year)
	if err != nil {
		return err
	}
	months := make([]month, 0, len(monthLengths))
	for i, monthLength := range monthLengths {
		m := month{
			Month: i + 1,
			Name:  monthNames[i],
			Days:  monthLength,
		}
		// The first days of late BS 2099 months fall outside the supported AD range.
		if startAD, err := bsconv.BSToAD(year, i+1, 1); err == nil {
			m.StartAD = startAD.Format(flags.Layout)
		}
		months = append(months, m)
	}
	records := cliio.Records[month]{
		Headers: []string{"MONTH", "NAME", "DAYS", "STARTS (AD)"},
		Row: func(m month) []string {
			return []string{strconv.Itoa(m.Month), m.Name, strconv.Itoa(m.Days), m.StartAD}
		},
	}
	if format == cliio.FormatTable {
		records.Totals = []string{"", "TOTAL", strconv.Itoa(yearLength), ""}
	}
	return cliio.WriteRecords(container.Stdout(), format, records, months...)
}
