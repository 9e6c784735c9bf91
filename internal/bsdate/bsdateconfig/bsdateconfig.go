// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsdateconfig provides configuration parsing and validation for bsdate.
//
// Configuration is stored at ~/.config/bsdate/bsdate.yaml (or
// $BSDATE_CONFIG_DIR/bsdate.yaml). The file is optional: every setting has a
// default, and a missing file yields the default configuration.
package bsdateconfig

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/bufdev/bsdate/internal/bsdate/bsdatepath"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultServerAddress is the default listen address for "bsdate serve".
	DefaultServerAddress = ":8080"
	// DefaultRateLimitRequests is the default number of requests allowed per window per client IP.
	DefaultRateLimitRequests = 60
	// DefaultRateLimitWindow is the default rate limit window.
	DefaultRateLimitWindow = time.Minute
	// DefaultRequestTimeout is the default server read and write timeout.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultClientBaseURL is the default base URL of the hosted conversion API.
	DefaultClientBaseURL = "https://sudhanparajuli.com.np/api"
	// DefaultClientTimeout is the default per-request timeout of the API client.
	DefaultClientTimeout = 10 * time.Second
	// DefaultClientMaxAttempts is the default maximum number of attempts per API call.
	DefaultClientMaxAttempts = 3
	// DefaultClientInitialRetryDelay is the default delay before the first retry.
	DefaultClientInitialRetryDelay = 2 * time.Second
	// DefaultClientMaxRetryDelay is the default maximum delay between retries.
	DefaultClientMaxRetryDelay = 30 * time.Second
	// DefaultClientUserAgent is the default User-Agent header sent by the API client.
	DefaultClientUserAgent = "bsdate-go/1.0"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# HTTP API server configuration for "bsdate serve".
#
# Optional. All fields have defaults.
server:
  # The address to listen on.
  address: ":8080"
  # Origins allowed by CORS. Use "*" to allow any origin.
  cors_allowed_origins:
    - "*"
  # Per-client-IP rate limit.
  rate_limit:
    requests: 60
    window: 1m
  # Read and write timeout for each request.
  request_timeout: 10s
# Conversion API client configuration for "bsdate remote".
#
# Optional. All fields have defaults.
client:
  # The API base URL. Paths /ad-to-bs/Y/M/D and /bs-to-ad/Y/M/D are appended.
  base_url: https://sudhanparajuli.com.np/api
  # Per-request timeout.
  timeout: 10s
  # Retries with exponential backoff on network errors, 429, and 5xx.
  max_attempts: 3
  initial_retry_delay: 2s
  max_retry_delay: 30s
  # The User-Agent header sent with every request.
  user_agent: bsdate-go/1.0
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Server holds the HTTP API server configuration.
	Server ExternalServerConfig `yaml:"server"`
	// Client holds the conversion API client configuration.
	Client ExternalClientConfig `yaml:"client"`
}

// ExternalServerConfig holds HTTP API server configuration.
type ExternalServerConfig struct {
	// Address is the listen address (e.g., ":8080").
	Address string `yaml:"address"`
	// CORSAllowedOrigins is the list of origins allowed by CORS.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// RateLimit is the per-client-IP rate limit.
	RateLimit ExternalRateLimitConfig `yaml:"rate_limit"`
	// RequestTimeout is the read and write timeout as a Go duration string (e.g., "10s").
	RequestTimeout string `yaml:"request_timeout"`
}

// ExternalRateLimitConfig holds rate limit configuration.
type ExternalRateLimitConfig struct {
	// Requests is the number of requests allowed per window.
	Requests int `yaml:"requests"`
	// Window is the window as a Go duration string (e.g., "1m").
	Window string `yaml:"window"`
}

// ExternalClientConfig holds conversion API client configuration.
type ExternalClientConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-request timeout as a Go duration string.
	Timeout string `yaml:"timeout"`
	// MaxAttempts is the maximum number of attempts per API call.
	MaxAttempts int `yaml:"max_attempts"`
	// InitialRetryDelay is the delay before the first retry as a Go duration string.
	InitialRetryDelay string `yaml:"initial_retry_delay"`
	// MaxRetryDelay is the maximum delay between retries as a Go duration string.
	MaxRetryDelay string `yaml:"max_retry_delay"`
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// Server is the HTTP API server configuration.
	Server ServerConfig
	// Client is the conversion API client configuration.
	Client ClientConfig
}

// ServerConfig is the validated HTTP API server configuration.
type ServerConfig struct {
	// Address is the listen address.
	Address string
	// CORSAllowedOrigins is the list of origins allowed by CORS.
	CORSAllowedOrigins []string
	// RateLimitRequests is the number of requests allowed per window per client IP.
	RateLimitRequests int
	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration
	// RequestTimeout is the read and write timeout for each request.
	RequestTimeout time.Duration
}

// ClientConfig is the validated conversion API client configuration.
type ClientConfig struct {
	// BaseURL is the API base URL without a trailing slash.
	BaseURL string
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// MaxAttempts is the maximum number of attempts per API call.
	MaxAttempts int
	// InitialRetryDelay is the delay before the first retry.
	InitialRetryDelay time.Duration
	// MaxRetryDelay is the maximum delay between retries.
	MaxRetryDelay time.Duration
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
//
// Empty fields take their defaults.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	serverConfig, err := newServerConfig(externalConfig.Server)
	if err != nil {
		return nil, err
	}
	clientConfig, err := newClientConfig(externalConfig.Client)
	if err != nil {
		return nil, err
	}
	return &Config{
		Server: serverConfig,
		Client: clientConfig,
	}, nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	config, err := NewConfig(ExternalConfig{Version: "v1"})
	if err != nil {
		// The zero ExternalConfig with a version is always valid.
		panic(err)
	}
	return config
}

// ReadConfig reads and validates the configuration file from the given config directory.
// Returns the default configuration if the file does not exist.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := bsdatepath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return ReadConfigFile(filePath)
}

// ReadConfigFile reads and validates the configuration file at the given path.
func ReadConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"bsdate config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return NewConfig(externalConfig)
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := bsdatepath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	// Create the config directory if it does not exist.
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfigFile reads and validates the configuration file at the given path.
func ValidateConfigFile(filePath string) error {
	_, err := ReadConfigFile(filePath)
	return err
}

// *** PRIVATE ***

func newServerConfig(external ExternalServerConfig) (ServerConfig, error) {
	serverConfig := ServerConfig{
		Address:            external.Address,
		CORSAllowedOrigins: external.CORSAllowedOrigins,
		RateLimitRequests:  external.RateLimit.Requests,
	}
	if serverConfig.Address == "" {
		serverConfig.Address = DefaultServerAddress
	}
	if len(serverConfig.CORSAllowedOrigins) == 0 {
		serverConfig.CORSAllowedOrigins = []string{"*"}
	}
	if serverConfig.RateLimitRequests < 0 {
		return ServerConfig{}, fmt.Errorf("server.rate_limit.requests must be positive, got %d", serverConfig.RateLimitRequests)
	}
	if serverConfig.RateLimitRequests == 0 {
		serverConfig.RateLimitRequests = DefaultRateLimitRequests
	}
	var err error
	if serverConfig.RateLimitWindow, err = parseDuration("server.rate_limit.window", external.RateLimit.Window, DefaultRateLimitWindow); err != nil {
		return ServerConfig{}, err
	}
	if serverConfig.RequestTimeout, err = parseDuration("server.request_timeout", external.RequestTimeout, DefaultRequestTimeout); err != nil {
		return ServerConfig{}, err
	}
	return serverConfig, nil
}

func newClientConfig(external ExternalClientConfig) (ClientConfig, error) {
	clientConfig := ClientConfig{
		BaseURL:     external.BaseURL,
		MaxAttempts: external.MaxAttempts,
		UserAgent:   external.UserAgent,
	}
	if clientConfig.BaseURL == "" {
		clientConfig.BaseURL = DefaultClientBaseURL
	}
	parsedURL, err := url.Parse(clientConfig.BaseURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return ClientConfig{}, fmt.Errorf("client.base_url %q must be an absolute http or https URL", clientConfig.BaseURL)
	}
	if clientConfig.MaxAttempts < 0 {
		return ClientConfig{}, fmt.Errorf("client.max_attempts must be positive, got %d", clientConfig.MaxAttempts)
	}
	if clientConfig.MaxAttempts == 0 {
		clientConfig.MaxAttempts = DefaultClientMaxAttempts
	}
	if clientConfig.UserAgent == "" {
		clientConfig.UserAgent = DefaultClientUserAgent
	}
	if clientConfig.Timeout, err = parseDuration("client.timeout", external.Timeout, DefaultClientTimeout); err != nil {
		return ClientConfig{}, err
	}
	if clientConfig.InitialRetryDelay, err = parseDuration("client.initial_retry_delay", external.InitialRetryDelay, DefaultClientInitialRetryDelay); err != nil {
		return ClientConfig{}, err
	}
	if clientConfig.MaxRetryDelay, err = parseDuration("client.max_retry_delay", external.MaxRetryDelay, DefaultClientMaxRetryDelay); err != nil {
		return ClientConfig{}, err
	}
	if clientConfig.MaxRetryDelay < clientConfig.InitialRetryDelay {
		return ClientConfig{}, errors.New("client.max_retry_delay must not be less than client.initial_retry_delay")
	}
	return clientConfig, nil
}

// parseDuration parses a positive duration, returning defaultValue for an empty string.
func parseDuration(fieldName string, value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fieldName, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", fieldName, value)
	}
	return duration, nil
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
