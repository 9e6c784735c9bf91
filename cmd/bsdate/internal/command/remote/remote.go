// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package remote implements the "remote" command group.
package remote

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/remote/remotecacheclear"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/remote/remoteconvert"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/command/remote/remotetoday"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
)

// NewCommand returns a new remote command group that converts through the conversion API.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Convert dates through the conversion API",
		Long: `Convert dates through the conversion API.

The API base URL is read from client.base_url in the configuration file and may
be overridden with the BSDATE_API_URL environment variable. Transient failures
(network errors, HTTP 429, and HTTP 5xx) are retried with exponential backoff.`,
		SubCommands: []*appcmd.Command{
			remoteconvert.NewCommand("ad-to-bs", builder, bsconv.DirectionADToBS),
			remoteconvert.NewCommand("bs-to-ad", builder, bsconv.DirectionBSToAD),
			remotetoday.NewCommand("today", builder),
			remotecacheclear.NewCommand("clear-cache", builder),
		},
	}
}
