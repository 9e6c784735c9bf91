// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsclient provides a client for the hosted AD/BS date conversion API.
//
// The API serves GET {baseURL}/ad-to-bs/{year}/{month}/{day} and
// GET {baseURL}/bs-to-ad/{year}/{month}/{day}, answering with the envelope
//
//	{"success": true, "input": {...}, "result": {"year": 2081, "month": 6, "day": 29}}
//	{"success": false, "error": "month must be between 1 and 12"}
//
// The client validates inputs locally before calling the API, retries
// transient failures with exponential backoff, caches results, coalesces
// concurrent identical requests, and converts batches with bounded concurrency.
package bsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bufdev/bsdate/internal/pkg/backoff"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/pkg/datepb"
	"github.com/bufdev/bsdate/internal/standard/xtime"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the base URL of the public conversion API.
	DefaultBaseURL = "https://sudhanparajuli.com.np/api"
	// DefaultUserAgent is the User-Agent header sent with every request.
	DefaultUserAgent = "bsdate-go/1.0"
	// DefaultTimeout is the per-request timeout of the default HTTP client.
	DefaultTimeout = 10 * time.Second
	// DefaultBatchConcurrency is the default number of concurrent requests in ConvertBatch.
	DefaultBatchConcurrency = 4
)

// sharedFetchTimeout bounds a coalesced request, which runs detached from the
// contexts of the callers waiting on it.
const sharedFetchTimeout = 2 * time.Minute

// DefaultRetryPolicy is the retry policy used unless ClientWithRetry is given.
var DefaultRetryPolicy = backoff.Policy{
	MaxAttempts:  3,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// Input is a single year, month, and day to convert.
type Input struct {
	Year  int
	Month int
	Day   int
}

// BatchResult is the outcome of converting a single Input in a batch.
type BatchResult struct {
	// Input is the date that was converted.
	Input bsconv.Date
	// Output is the converted date. Only set if Err is nil.
	Output bsconv.Date
	// Err is the error converting Input, if any.
	Err error
}

// Client is the interface for the conversion API.
type Client interface {
	// ADToBS converts a Gregorian date to Bikram Sambat through the API.
	ADToBS(ctx context.Context, year int, month int, day int) (bsconv.Date, error)
	// BSToAD converts a Bikram Sambat date to Gregorian through the API.
	BSToAD(ctx context.Context, year int, month int, day int) (bsconv.Date, error)
	// Convert converts year, month, and day in the given direction through the API.
	Convert(ctx context.Context, direction bsconv.Direction, year int, month int, day int) (bsconv.Result, error)
	// Today converts today's Gregorian date to Bikram Sambat through the API.
	Today(ctx context.Context) (bsconv.Result, error)
	// ConvertBatch converts every input in the given direction.
	//
	// Results are in input order. A failed input does not stop the batch.
	ConvertBatch(ctx context.Context, direction bsconv.Direction, inputs []Input) []BatchResult
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*client)

// ClientWithHTTPClient sets the HTTP client to use for requests.
func ClientWithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// ClientWithBaseURL sets the API base URL.
func ClientWithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// ClientWithUserAgent sets the User-Agent header sent with every request.
func ClientWithUserAgent(userAgent string) ClientOption {
	return func(c *client) {
		c.userAgent = userAgent
	}
}

// ClientWithRetry sets the retry policy for transient failures.
func ClientWithRetry(maxAttempts int, initialDelay time.Duration, maxDelay time.Duration) ClientOption {
	return func(c *client) {
		c.retryPolicy = backoff.Policy{
			MaxAttempts:  maxAttempts,
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
		}
	}
}

// ClientWithCache sets the cache for conversion results.
//
// The default is an in-memory cache. Pass nil to disable caching.
func ClientWithCache(cache Cache) ClientOption {
	return func(c *client) {
		c.cache = cache
	}
}

// ClientWithValidation sets whether inputs are validated locally before calling the API.
//
// The default is true.
func ClientWithValidation(validate bool) ClientOption {
	return func(c *client) {
		c.validate = validate
	}
}

// ClientWithBatchConcurrency sets the maximum number of concurrent requests in ConvertBatch.
func ClientWithBatchConcurrency(batchConcurrency int) ClientOption {
	return func(c *client) {
		c.batchConcurrency = batchConcurrency
	}
}

// ClientWithLocation sets the location used to determine today's date.
//
// The default is time.Local.
func ClientWithLocation(location *time.Location) ClientOption {
	return func(c *client) {
		c.location = location
	}
}

// NewClient creates a new conversion API client with the given options.
func NewClient(logger *slog.Logger, options ...ClientOption) Client {
	c := &client{
		logger:           logger,
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		baseURL:          DefaultBaseURL,
		userAgent:        DefaultUserAgent,
		retryPolicy:      DefaultRetryPolicy,
		cache:            NewMemoryCache(),
		validate:         true,
		batchConcurrency: DefaultBatchConcurrency,
		location:         time.Local,
	}
	for _, option := range options {
		option(c)
	}
	if c.batchConcurrency < 1 {
		c.batchConcurrency = 1
	}
	return c
}

// *** PRIVATE ***

type client struct {
	logger           *slog.Logger
	httpClient       *http.Client
	baseURL          string
	userAgent        string
	retryPolicy      backoff.Policy
	cache            Cache
	validate         bool
	batchConcurrency int
	location         *time.Location
	group            singleflight.Group
}

// envelope is the JSON response of the conversion API.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

func (c *client) ADToBS(ctx context.Context, year int, month int, day int) (bsconv.Date, error) {
	result, err := c.Convert(ctx, bsconv.DirectionADToBS, year, month, day)
	if err != nil {
		return bsconv.Date{}, err
	}
	return result.Output, nil
}

func (c *client) BSToAD(ctx context.Context, year int, month int, day int) (bsconv.Date, error) {
	result, err := c.Convert(ctx, bsconv.DirectionBSToAD, year, month, day)
	if err != nil {
		return bsconv.Date{}, err
	}
	return result.Output, nil
}

func (c *client) Convert(ctx context.Context, direction bsconv.Direction, year int, month int, day int) (bsconv.Result, error) {
	direction, err := bsconv.ParseDirection(string(direction))
	if err != nil {
		return bsconv.Result{}, err
	}
	input := bsconv.Date{Calendar: direction.Source(), Year: year, Month: month, Day: day}
	if c.validate {
		if err := bsconv.Validate(input); err != nil {
			c.logger.Debug("rejected invalid input", "direction", string(direction), "input", input.String(), "error", err)
			return bsconv.Result{}, err
		}
	}
	key := CacheKey(direction, year, month, day)
	if c.cache != nil {
		output, ok, err := c.cache.Get(key)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		} else if ok {
			c.logger.Debug("cache hit", "key", key)
			return bsconv.Result{Input: input, Output: output}, nil
		}
	}
	// Identical concurrent conversions share a single request. The shared
	// request outlives any one caller's context, bounded by sharedFetchTimeout.
	resultC := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return c.fetch(fetchCtx, direction, input)
	})
	select {
	case <-ctx.Done():
		return bsconv.Result{}, ctx.Err()
	case result := <-resultC:
		if result.Err != nil {
			return bsconv.Result{}, result.Err
		}
		if result.Shared {
			c.logger.Debug("coalesced request", "key", key)
		}
		return bsconv.Result{Input: input, Output: result.Val.(bsconv.Date)}, nil
	}
}

func (c *client) Today(ctx context.Context) (bsconv.Result, error) {
	today := xtime.Today(c.location)
	return c.Convert(ctx, bsconv.DirectionADToBS, today.Year, int(today.Month), today.Day)
}

func (c *client) ConvertBatch(ctx context.Context, direction bsconv.Direction, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))
	var eg errgroup.Group
	eg.SetLimit(c.batchConcurrency)
	for i, input := range inputs {
		results[i].Input = bsconv.Date{Calendar: direction.Source(), Year: input.Year, Month: input.Month, Day: input.Day}
		eg.Go(func() error {
			result, err := c.Convert(ctx, direction, input.Year, input.Month, input.Day)
			if err != nil {
				results[i].Err = err
				// Per-item failures never cancel the rest of the batch.
				return nil
			}
			results[i].Output = result.Output
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// fetch calls the API with retries and stores the result in the cache.
func (c *client) fetch(ctx context.Context, direction bsconv.Direction, input bsconv.Date) (bsconv.Date, error) {
	output, err := backoff.Retry(ctx, c.retryPolicy,
		func(ctx context.Context, attempt int) (bsconv.Date, bool, error) {
			if attempt > 0 {
				c.logger.Info("retrying conversion request", "direction", string(direction), "input", input.String(), "attempt", attempt+1)
			}
			return c.doRequest(ctx, direction, input)
		},
	)
	if err != nil {
		return bsconv.Date{}, err
	}
	if c.cache != nil {
		key := CacheKey(direction, input.Year, input.Month, input.Day)
		if err := c.cache.Set(key, output); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return output, nil
}

// doRequest performs a single API request.
//
// Returns whether the error is retryable.
func (c *client) doRequest(ctx context.Context, direction bsconv.Direction, input bsconv.Date) (bsconv.Date, bool, error) {
	reqURL := fmt.Sprintf("%s/%s/%d/%d/%d", c.baseURL, direction, input.Year, input.Month, input.Day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return bsconv.Date{}, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	c.logger.Debug("conversion request", "url", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation by the caller is not transient.
		if ctx.Err() != nil {
			return bsconv.Date{}, false, ctx.Err()
		}
		return bsconv.Date{}, true, fmt.Errorf("requesting %s: %w", reqURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return bsconv.Date{}, true, fmt.Errorf("reading response: %w", err)
	}
	var responseEnvelope envelope
	decodeErr := json.Unmarshal(body, &responseEnvelope)
	if resp.StatusCode != http.StatusOK {
		apiError := &APIError{StatusCode: resp.StatusCode, Message: responseEnvelope.Error}
		if decodeErr != nil || apiError.Message == "" {
			apiError.Message = strings.TrimSpace(string(body))
		}
		retryable := apiError.Retryable()
		if retryable {
			c.logger.Warn("transient API error, will retry", "status", resp.StatusCode, "message", apiError.Message)
		}
		return bsconv.Date{}, retryable, apiError
	}
	if decodeErr != nil {
		return bsconv.Date{}, false, fmt.Errorf("parsing response: %w", decodeErr)
	}
	if !responseEnvelope.Success {
		return bsconv.Date{}, false, &APIError{StatusCode: resp.StatusCode, Message: responseEnvelope.Error}
	}
	if len(responseEnvelope.Result) == 0 {
		return bsconv.Date{}, false, errors.New("parsing response: missing result")
	}
	protoDate, err := datepb.UnmarshalJSON(responseEnvelope.Result)
	if err != nil {
		return bsconv.Date{}, false, fmt.Errorf("parsing result: %w", err)
	}
	output, err := datepb.ProtoToDate(input.Calendar.Other(), protoDate)
	if err != nil {
		return bsconv.Date{}, false, fmt.Errorf("parsing result: %w", err)
	}
	return output, false, nil
}
