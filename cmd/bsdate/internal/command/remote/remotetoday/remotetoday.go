// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package remotetoday implements the "remote today" command.
package remotetoday

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/spf13/pflag"
)

// NewCommand returns a new command that converts today's local date through the API.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Convert today's local date to BS through the API",
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

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := flags.ParseFormat()
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
	result, err := client.Today(ctx)
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
