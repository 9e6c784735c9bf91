// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package remoteconvert implements the "remote ad-to-bs" and "remote bs-to-ad" commands.
package remoteconvert

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/spf13/pflag"
)

// NewCommand returns a new command that converts a single date through the API.
func NewCommand(name string, builder appext.SubCommandBuilder, direction bsconv.Direction) *appcmd.Command {
	flags := newFlags()
	source := direction.Source()
	return &appcmd.Command{
		Use:   name + " YEAR MONTH DAY",
		Short: fmt.Sprintf("Convert a date from %s to %s through the API", source, source.Other()),
		Args:  appcmd.ExactArgs(3),
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
	bsdatecmd.ClientFlags
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.OutputFlags.Bind(flagSet)
	f.ClientFlags.Bind(flagSet)
}

func run(ctx context.Context, container appext.Container, flags *flags, direction bsconv.Direction) (retErr error) {
	format, err := flags.ParseFormat()
	if err != nil {
		return err
	}
	year, month, day, err := bsdatecmd.ParseDateArgs(container)
	if err != nil {
		return err
	}
	client, closeFunc, err := bsdatecmd.NewClient(container, flags.ClientFlags)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeFunc())
	}()
	result, err := client.Convert(ctx, direction, year, month, day)
	if err != nil {
		return bsdatecmd.ConversionError(err)
	}
	return bsdatecmd.WriteConversions(
		container.Stdout(),
		format,
		direction,
		false,
		bsdatecmd.NewConversion(direction, flags.Layout, result),
	)
}
