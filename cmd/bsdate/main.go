// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/batch"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/calendar"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/config"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/convert"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/remote"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/serve"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/today"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("bsdate"))
}

// newRootCommand creates the root bsdate command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:   name,
		Short: "Convert dates between the Gregorian (AD) and Bikram Sambat (BS) calendars",
		Long: `Convert dates between the Gregorian (AD) and Bikram Sambat (BS) calendars.

Conversions are computed locally from a built-in table covering BS 2000-2099
(AD 1943-04-14 through AD 2042-12-31 in the supported AD year window).

The "remote" commands call the hosted conversion API instead, and "serve" runs
the same API locally.`,
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			convert.NewCommand("ad-to-bs", builder, bsconv.DirectionADToBS),
			convert.NewCommand("bs-to-ad", builder, bsconv.DirectionBSToAD),
			today.NewCommand("today", builder),
			calendar.NewCommand("calendar", builder),
			batch.NewCommand("batch", builder),
			remote.NewCommand("remote", builder),
			serve.NewCommand("serve", builder),
			config.NewCommand("config", builder),
		},
	}
}
