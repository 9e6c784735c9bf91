// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsdatecmd provides shared wiring for bsdate commands: common flags,
// argument parsing, conversion output, and constructing the API client.
package bsdatecmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/bsdate/internal/bsdate/bsdatecache"
	"github.com/bufdev/bsdate/internal/bsdate/bsdateconfig"
	"github.com/bufdev/bsdate/internal/bsdate/bsdatepath"
	"github.com/bufdev/bsdate/internal/pkg/bsclient"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/pkg/cliio"
	"github.com/bufdev/bsdate/internal/standard/xos"
	"github.com/spf13/pflag"
)

const (
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// LayoutFlagName is the flag name for the date layout.
	LayoutFlagName = "layout"
	// DefaultLayout is the default date layout.
	DefaultLayout = "YYYY-MM-DD"
	// apiURLEnvVar overrides client.base_url from the config file.
	apiURLEnvVar = "BSDATE_API_URL"
)

// OutputFlags are the flags shared by every command that prints conversions.
type OutputFlags struct {
	// Format is the output format (table, csv, json).
	Format string
	// Layout is the date layout using the YYYY, MM, and DD tokens.
	Layout string
}

// Bind registers the flag definitions with the given flag set.
func (f *OutputFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Format, FormatFlagName, "table", "Output format (table, csv, json)")
	flagSet.StringVar(&f.Layout, LayoutFlagName, DefaultLayout, "Date layout using the tokens YYYY, MM, and DD")
}

// ParseFormat parses the format flag, returning an invalid argument error on failure.
func (f *OutputFlags) ParseFormat() (cliio.Format, error) {
	format, err := cliio.ParseFormat(f.Format)
	if err != nil {
		return "", appcmd.NewInvalidArgumentError(err.Error())
	}
	return format, nil
}

// Conversion is a single conversion as printed by the CLI.
type Conversion struct {
	// Direction is the conversion direction.
	Direction bsconv.Direction `json:"direction"`
	// Input is the formatted input date, or the raw input if it could not be parsed.
	Input string `json:"input"`
	// Output is the formatted output date. Empty if Error is set.
	Output string `json:"output,omitempty"`
	// Error is the conversion error, if any.
	Error string `json:"error,omitempty"`
}

// NewConversion returns the printable form of a successful conversion.
func NewConversion(direction bsconv.Direction, layout string, result bsconv.Result) Conversion {
	return Conversion{
		Direction: direction,
		Input:     result.Input.Format(layout),
		Output:    result.Output.Format(layout),
	}
}

// WriteConversions writes conversions in the given format.
//
// If withErrors is true, an ERROR column and a totals row are included in table output.
func WriteConversions(writer io.Writer, format cliio.Format, direction bsconv.Direction, withErrors bool, conversions ...Conversion) error {
	source := direction.Source()
	headers := []string{source.String(), source.Other().String()}
	records := cliio.Records[Conversion]{
		Headers: headers,
		Row: func(conversion Conversion) []string {
			return []string{conversion.Input, conversion.Output}
		},
	}
	if withErrors {
		var failed int
		for _, conversion := range conversions {
			if conversion.Error != "" {
				failed++
			}
		}
		records.Headers = append(headers, "ERROR")
		records.Row = func(conversion Conversion) []string {
			return []string{conversion.Input, conversion.Output, conversion.Error}
		}
		records.Totals = []string{
			fmt.Sprintf("%d converted", len(conversions)-failed),
			fmt.Sprintf("%d failed", failed),
			"",
		}
	}
	return cliio.WriteRecords(writer, format, records, conversions...)
}

// ParseDateArgs parses YEAR MONTH DAY from the first three arguments.
func ParseDateArgs(container appext.Container) (int, int, int, error) {
	values := make([]int, 3)
	for i, name := range []string{"year", "month", "day"} {
		value, err := strconv.Atoi(container.Arg(i))
		if err != nil {
			return 0, 0, 0, appcmd.NewInvalidArgumentErrorf("%s must be an integer, got %q", name, container.Arg(i))
		}
		values[i] = value
	}
	return values[0], values[1], values[2], nil
}

// ConversionError converts validation and range errors into invalid argument errors.
func ConversionError(err error) error {
	if bsconv.IsConversionError(err) {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	return err
}

// ReadConfig reads the configuration file from the container's config directory.
func ReadConfig(container appext.Container) (*bsdateconfig.Config, error) {
	return bsdateconfig.ReadConfig(container.ConfigDirPath())
}

// ClientFlags are the flags shared by commands that call the conversion API.
type ClientFlags struct {
	// Cache enables the persistent conversion cache.
	Cache bool
	// CacheDir overrides the persistent cache directory.
	CacheDir string
	// NoValidate disables local input validation.
	NoValidate bool
}

// Bind registers the flag definitions with the given flag set.
func (f *ClientFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&f.Cache, "cache", false, "Cache conversions on disk across invocations")
	flagSet.StringVar(&f.CacheDir, "cache-dir", "", "The persistent cache directory (defaults to the bsdate cache directory)")
	flagSet.BoolVar(&f.NoValidate, "no-validate", false, "Send inputs to the API without validating them locally")
}

// NewClient constructs an API client from the config file, environment, and flags.
//
// The returned close function must be called when done.
func NewClient(container appext.Container, clientFlags ClientFlags) (bsclient.Client, func() error, error) {
	config, err := ReadConfig(container)
	if err != nil {
		return nil, nil, err
	}
	baseURL := config.Client.BaseURL
	if envBaseURL := container.Env(apiURLEnvVar); envBaseURL != "" {
		baseURL = envBaseURL
	}
	logger := container.Logger()
	options := []bsclient.ClientOption{
		bsclient.ClientWithHTTPClient(&http.Client{Timeout: config.Client.Timeout}),
		bsclient.ClientWithBaseURL(baseURL),
		bsclient.ClientWithUserAgent(config.Client.UserAgent),
		bsclient.ClientWithRetry(config.Client.MaxAttempts, config.Client.InitialRetryDelay, config.Client.MaxRetryDelay),
		bsclient.ClientWithValidation(!clientFlags.NoValidate),
	}
	closeFunc := func() error { return nil }
	if clientFlags.Cache {
		cache, err := OpenCache(container, clientFlags.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, bsclient.ClientWithCache(cache))
		closeFunc = cache.Close
	}
	return bsclient.NewClient(logger, options...), closeFunc, nil
}

// OpenCache opens the persistent conversion cache.
//
// If cacheDirFlag is empty, the cache is stored in the bsdate cache directory.
func OpenCache(container appext.Container, cacheDirFlag string) (*bsdatecache.Cache, error) {
	dirPath := bsdatepath.ConversionCacheDirPath(container.CacheDirPath())
	if cacheDirFlag != "" {
		expandedDirPath, err := xos.ExpandHome(cacheDirFlag)
		if err != nil {
			return nil, err
		}
		dirPath = expandedDirPath
	}
	if dirPath == "" {
		return nil, errors.New("could not determine cache directory")
	}
	return bsdatecache.Open(container.Logger(), dirPath)
}
