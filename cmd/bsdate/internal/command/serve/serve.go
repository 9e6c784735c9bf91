// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package serve implements the "serve" command.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/bsdate/bsdateserver"
	"github.com/spf13/pflag"
)

// addressFlagName is the flag name for the listen address.
const addressFlagName = "address"

// NewCommand returns a new serve command that runs the HTTP conversion API.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Run the HTTP conversion API",
		Long: `Run the HTTP conversion API.

Serves GET /api/ad-to-bs/YEAR/MONTH/DAY, GET /api/bs-to-ad/YEAR/MONTH/DAY,
GET /api/today, GET /api/calendar/YEAR, GET /health, and GET /metrics.

CORS, rate limiting, and timeouts are read from the "server" section of the
configuration file. Runs until interrupted, then shuts down gracefully.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Address overrides server.address from the configuration file.
	Address string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Address, addressFlagName, "", "The address to listen on (overrides server.address)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	config, err := bsdatecmd.ReadConfig(container)
	if err != nil {
		return err
	}
	serverConfig := config.Server
	if flags.Address != "" {
		serverConfig.Address = flags.Address
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return bsdateserver.NewServer(container.Logger(), serverConfig).Run(ctx)
}
