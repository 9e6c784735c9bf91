// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package remotecacheclear implements the "remote clear-cache" command.
package remotecacheclear

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/spf13/pflag"
)

// NewCommand returns a new command that clears the persistent conversion cache.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Clear the persistent conversion cache",
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
	// CacheDir overrides the persistent cache directory.
	CacheDir string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.CacheDir, "cache-dir", "", "The persistent cache directory (defaults to the bsdate cache directory)")
}

func run(_ context.Context, container appext.Container, flags *flags) (retErr error) {
	cache, err := bsdatecmd.OpenCache(container, flags.CacheDir)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, cache.Close())
	}()
	count, err := cache.Len()
	if err != nil {
		return err
	}
	if err := cache.Clear(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(container.Stdout(), "cleared %d cached conversions\n", count)
	return err
}
