// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package batch implements the "batch" command.
package batch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/cmd/bsdate/internal/bsdatecmd"
	"github.com/bufdev/bsdate/internal/pkg/bsclient"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/spf13/pflag"
)

const (
	// directionFlagName is the flag name for the conversion direction.
	directionFlagName = "direction"
	// remoteFlagName is the flag name for converting through the API.
	remoteFlagName = "remote"
)

// NewCommand returns a new batch command that converts one date per input line.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE",
		Short: "Convert a list of dates",
		Long: `Convert a list of dates, one YYYY-MM-DD (or YYYY/MM/DD) date per line.

Use "-" as FILE to read from stdin. Blank lines and lines starting with "#"
are skipped. A date that fails to convert is reported with its error and does
not stop the batch.

With --remote, dates are converted through the conversion API.`,
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
	bsdatecmd.ClientFlags
	// Direction is the conversion direction (ad-to-bs, bs-to-ad).
	Direction string
	// Remote converts through the API instead of locally.
	Remote bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.OutputFlags.Bind(flagSet)
	f.ClientFlags.Bind(flagSet)
	flagSet.StringVar(&f.Direction, directionFlagName, string(bsconv.DirectionADToBS), "Conversion direction (ad-to-bs, bs-to-ad)")
	flagSet.BoolVar(&f.Remote, remoteFlagName, false, "Convert through the conversion API")
}

// line is a single non-blank input line.
type line struct {
	raw      string
	date     bsconv.Date
	parseErr error
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := flags.ParseFormat()
	if err != nil {
		return err
	}
	direction, err := bsconv.ParseDirection(flags.Direction)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	lines, err := readLines(container, container.Arg(0), direction.Source())
	if err != nil {
		return err
	}
	var conversions []bsdatecmd.Conversion
	if flags.Remote {
		client, closeFunc, err := bsdatecmd.NewClient(container, flags.ClientFlags)
		if err != nil {
			return err
		}
		defer func() {
			retErr = errors.Join(retErr, closeFunc())
		}()
		conversions = convertRemote(ctx, client, direction, flags.Layout, lines)
	} else {
		conversions = convertLocal(direction, flags.Layout, lines)
	}
	container.Logger().Debug("batch converted", "direction", string(direction), "count", len(conversions))
	return bsdatecmd.WriteConversions(container.Stdout(), format, direction, true, conversions...)
}

func convertLocal(direction bsconv.Direction, layout string, lines []line) []bsdatecmd.Conversion {
	conversions := make([]bsdatecmd.Conversion, 0, len(lines))
	for _, line := range lines {
		if line.parseErr != nil {
			conversions = append(conversions, failedConversion(direction, line.raw, line.parseErr))
			continue
		}
		result, err := bsconv.Convert(line.date)
		if err != nil {
			conversions = append(conversions, failedConversion(direction, line.date.Format(layout), err))
			continue
		}
		conversions = append(conversions, bsdatecmd.NewConversion(direction, layout, result))
	}
	return conversions
}

func convertRemote(ctx context.Context, client bsclient.Client, direction bsconv.Direction, layout string, lines []line) []bsdatecmd.Conversion {
	// Only parsed lines are sent. indexes maps each input back to its line.
	var (
		inputs  []bsclient.Input
		indexes []int
	)
	for i, line := range lines {
		if line.parseErr == nil {
			inputs = append(inputs, bsclient.Input{Year: line.date.Year, Month: line.date.Month, Day: line.date.Day})
			indexes = append(indexes, i)
		}
	}
	batchResults := client.ConvertBatch(ctx, direction, inputs)
	conversions := make([]bsdatecmd.Conversion, len(lines))
	for i, line := range lines {
		if line.parseErr != nil {
			conversions[i] = failedConversion(direction, line.raw, line.parseErr)
		}
	}
	for j, batchResult := range batchResults {
		i := indexes[j]
		if batchResult.Err != nil {
			conversions[i] = failedConversion(direction, batchResult.Input.Format(layout), batchResult.Err)
			continue
		}
		conversions[i] = bsdatecmd.NewConversion(
			direction,
			layout,
			bsconv.Result{Input: batchResult.Input, Output: batchResult.Output},
		)
	}
	return conversions
}

func failedConversion(direction bsconv.Direction, input string, err error) bsdatecmd.Conversion {
	return bsdatecmd.Conversion{
		Direction: direction,
		Input:     input,
		Error:     err.Error(),
	}
}

func readLines(container appext.Container, filePath string, calendar bsconv.Calendar) (_ []line, retErr error) {
	var reader io.Reader = container.Stdin()
	if filePath != "-" {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer func() {
			retErr = errors.Join(retErr, file.Close())
		}()
		reader = file
	}
	return parseLines(reader, calendar)
}

func parseLines(reader io.Reader, calendar bsconv.Calendar) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		date, err := bsconv.ParseDate(calendar, raw)
		lines = append(lines, line{raw: raw, date: date, parseErr: err})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
