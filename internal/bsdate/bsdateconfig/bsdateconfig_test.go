// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsdateconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/bsdate/internal/bsdate/bsdatepath"
	"github.com/stretchr/testify/require"
)

func TestInitConfigTemplateIsValid(t *testing.T) {
	t.Parallel()
	configDirPath := filepath.Join(t.TempDir(), "bsdate")
	filePath, err := InitConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, bsdatepath.ConfigFilePath(configDirPath), filePath)
	// The template must round-trip to the defaults.
	config, err := ReadConfig(configDirPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
	// A second init must not overwrite the file.
	_, err = InitConfig(configDirPath)
	require.Error(t, err)
}

func TestReadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	config, err := ReadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultServerAddress, config.Server.Address)
	require.Equal(t, []string{"*"}, config.Server.CORSAllowedOrigins)
	require.Equal(t, DefaultRateLimitRequests, config.Server.RateLimitRequests)
	require.Equal(t, DefaultClientBaseURL, config.Client.BaseURL)
	require.Equal(t, DefaultClientMaxAttempts, config.Client.MaxAttempts)
	require.Equal(t, DefaultClientUserAgent, config.Client.UserAgent)
}

func TestReadConfigFileOverrides(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "bsdate.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(`version: v1
server:
  address: 127.0.0.1:9090
  cors_allowed_origins: [https://example.com]
  rate_limit:
    requests: 5
    window: 10s
client:
  base_url: http://localhost:9090/api
  max_attempts: 1
  initial_retry_delay: 10ms
  max_retry_delay: 20ms
`), 0o644))
	config, err := ReadConfigFile(filePath)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", config.Server.Address)
	require.Equal(t, []string{"https://example.com"}, config.Server.CORSAllowedOrigins)
	require.Equal(t, 5, config.Server.RateLimitRequests)
	require.Equal(t, 10*time.Second, config.Server.RateLimitWindow)
	require.Equal(t, DefaultRequestTimeout, config.Server.RequestTimeout)
	require.Equal(t, "http://localhost:9090/api", config.Client.BaseURL)
	require.Equal(t, 1, config.Client.MaxAttempts)
	require.Equal(t, 10*time.Millisecond, config.Client.InitialRetryDelay)
	require.Equal(t, 20*time.Millisecond, config.Client.MaxRetryDelay)
}

func TestNewConfigErrors(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		desc           string
		externalConfig ExternalConfig
	}{
		{
			desc:           "missing version",
			externalConfig: ExternalConfig{},
		},
		{
			desc: "negative rate limit",
			externalConfig: ExternalConfig{
				Version: "v1",
				Server:  ExternalServerConfig{RateLimit: ExternalRateLimitConfig{Requests: -1}},
			},
		},
		{
			desc: "bad window",
			externalConfig: ExternalConfig{
				Version: "v1",
				Server:  ExternalServerConfig{RateLimit: ExternalRateLimitConfig{Window: "soon"}},
			},
		},
		{
			desc: "relative base URL",
			externalConfig: ExternalConfig{
				Version: "v1",
				Client:  ExternalClientConfig{BaseURL: "/api"},
			},
		},
		{
			desc: "max retry delay below initial",
			externalConfig: ExternalConfig{
				Version: "v1",
				Client:  ExternalClientConfig{InitialRetryDelay: "5s", MaxRetryDelay: "1s"},
			},
		},
		{
			desc: "zero timeout",
			externalConfig: ExternalConfig{
				Version: "v1",
				Client:  ExternalClientConfig{Timeout: "0s"},
			},
		},
	} {
		_, err := NewConfig(test.externalConfig)
		require.Error(t, err, test.desc)
	}
}

func TestValidateConfigFileRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "bsdate.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte("version: v1\nserver:\n  port: 80\n"), 0o644))
	require.Error(t, ValidateConfigFile(filePath))
	require.Error(t, ValidateConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
