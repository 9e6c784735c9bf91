// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package convert implements the "ad-to-bs" and "bs-to-ad" commands.
package convert

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/spf13/pflag"
)

// NewCommand returns a new command that converts a single date in the given direction.
func NewCommand(name string, builder appext.SubCommandBuilder, direction bsconv.Direction) *appcmd.Command {
	flags := newFlags()
	source := direction.Source()
	return &appcmd.Command{
		Use:   name + " YEAR MONTH DAY",
		Short: fmt.Sprintf("Convert a date from %s to %s", source, source.Other()),
		Long: fmt.Sprintf(`Convert a date from %s to %s.

The conversion is computed locally. Supported input years are %d-%d.`,
			source, source.Other(), minYear(source), maxYear(source)),
		Args: appcmd.ExactArgs(3),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags, direction)
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

func run(_ context.Context, container appext.Container, flags *flags, direction bsconv.Direction) error {
	format, err := flags.ParseFormat()
	if err != nil {
		return err
	}
	year, month, day, err := bsdatecmd.ParseDateArgs(container)
	if err != nil {
		return err
	}
	result, err := bsconv.ConvertDirection(direction, year, month, day)
	if err != nil {
		return bsdatecmd.ConversionError(err)
	}
	container.Logger().Debug("converted", "direction", string(direction), "input", result.Input.String(), "output", result.Output.String())
	return bsdatecmd.WriteConversions(
		container.Stdout(),
		format,
		direction,
		false,
		bsdatecmd.NewConversion(direction, flags.Layout, result),
	)
}

func minYear(calendar bsconv.Calendar) int {
	if calendar == bsconv.CalendarBS {
		return bsconv.MinBSYear
	}
	return bsconv.MinADYear
}

func maxYear(calendar bsconv.Calendar) int {
	if calendar == bsconv.CalendarBS {
		return bsconv.MaxBSYear
	}
	return bsconv.MaxADYear
}
