// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package today implements the "today" command.
package today

import (
	"context"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/standard/xtime"
	"github.com/spf13/pflag"
)

// timezoneFlagName is the flag name for the IANA time zone used to determine today's date.
const timezoneFlagName = "timezone"

// NewCommand returns a new today command that prints today's AD date and its BS equivalent.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Print today's date in both calendars",
		Args:  appcmd.NoArgs,
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
	// Timezone is the IANA time zone name, or empty for the local time zone.
	Timezone string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.OutputFlags.Bind(flagSet)
	flagSet.StringVar(&f.Timezone, timezoneFlagName, "", "IANA time zone used to determine today's date, e.g. Asia/Kathmandu (defaults to local)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := flags.ParseFormat()
	if err != nil {
		return err
	}
	location := time.Local
	if flags.Timezone != "" {
		location, err = time.LoadLocation(flags.Timezone)
		if err != nil {
			return appcmd.NewInvalidArgumentErrorf("invalid --%s: %v", timezoneFlagName, err)
		}
	}
	today := xtime.Today(location)
	result, err := bsconv.ConvertDirection(bsconv.DirectionADToBS, today.Year, int(today.Month), today.Day)
	if err != nil {
		return bsdatecmd.ConversionError(err)
	}
	return bsdatecmd.WriteConversions(
		container.Stdout(),
		format,
		bsconv.DirectionADToBS,
		false,
		bsdatecmd.NewConversion(bsconv.DirectionADToBS, flags.Layout, result),
	)
}
