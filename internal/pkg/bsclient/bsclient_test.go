// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/standard/xtime"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADToBS(t *testing.T) {
	t.Parallel()
	server, requests := newTestServer(t, nil)
	client := newTestClient(server.URL)
	output, err := client.ADToBS(context.Background(), 2024, 10, 15)
	require.NoError(t, err)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
	require.EqualValues(t, 1, requests.Load())
}

func TestBSToAD(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t, nil)
	client := newTestClient(server.URL)
	output, err := client.BSToAD(context.Background(), 2081, 6, 29)
	require.NoError(t, err)
	require.Equal(t, bsconv.NewADDate(2024, 10, 15), output)
}

func TestConvertSendsUserAgent(t *testing.T) {
	t.Parallel()
	var userAgent atomic.Value
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) bool {
		userAgent.Store(r.Header.Get("User-Agent"))
		return false
	})
	client := newTestClient(server.URL, ClientWithUserAgent("bsdate-test/2.0"))
	_, err := client.ADToBS(context.Background(), 2024, 10, 15)
	require.NoError(t, err)
	require.Equal(t, "bsdate-test/2.0", userAgent.Load())
}

func TestConvertCaches(t *testing.T) {
	t.Parallel()
	server, requests := newTestServer(t, nil)
	cache := NewMemoryCache()
	client := newTestClient(server.URL, ClientWithCache(cache))
	for range 3 {
		output, err := client.ADToBS(context.Background(), 2024, 10, 15)
		require.NoError(t, err)
		require.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
	}
	require.EqualValues(t, 1, requests.Load())
	length, err := cache.Len()
	require.NoError(t, err)
	require.Equal(t, 1, length)
	cached, ok, err := cache.Get("ad-to-bs-2024-10-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), cached)
	require.NoError(t, cache.Clear())
	_, err = client.ADToBS(context.Background(), 2024, 10, 15)
	require.NoError(t, err)
	require.EqualValues(t, 2, requests.Load())
}

func TestConvertCoalescesConcurrentRequests(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	server, requests := newTestServer(t, func(http.ResponseWriter, *http.Request) bool {
		<-release
		return false
	})
	client := newTestClient(server.URL, ClientWithCache(nil))
	var waitGroup sync.WaitGroup
	for range 8 {
		waitGroup.Go(func() {
			output, err := client.ADToBS(context.Background(), 2024, 10, 15)
			assert.NoError(t, err)
			assert.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
		})
	}
	// Give every goroutine time to join the in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(release)
	waitGroup.Wait()
	require.Less(t, requests.Load(), int64(8))
}

func TestConvertCoalescedRequestSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	server, requests := newTestServer(t, func(http.ResponseWriter, *http.Request) bool {
		<-release
		return false
	})
	client := newTestClient(server.URL, ClientWithCache(nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	canceledErrC := make(chan error, 1)
	go func() {
		_, err := client.ADToBS(ctx, 2024, 10, 15)
		canceledErrC <- err
	}()
	// Let the first caller start the shared request.
	time.Sleep(50 * time.Millisecond)
	type outcome struct {
		output bsconv.Date
		err    error
	}
	outcomeC := make(chan outcome, 1)
	go func() {
		output, err := client.ADToBS(context.Background(), 2024, 10, 15)
		outcomeC <- outcome{output: output, err: err}
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-canceledErrC, context.Canceled)
	close(release)
	result := <-outcomeC
	require.NoError(t, result.err)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), result.output)
	require.EqualValues(t, 1, requests.Load())
}

func TestConvertValidatesBeforeRequest(t *testing.T) {
	t.Parallel()
	server, requests := newTestServer(t, nil)
	client := newTestClient(server.URL)
	_, err := client.ADToBS(context.Background(), 2024, 13, 1)
	require.ErrorIs(t, err, bsconv.ErrInvalidMonth)
	_, err = client.BSToAD(context.Background(), 2081, 6, 32)
	require.ErrorIs(t, err, bsconv.ErrInvalidDayForMonth)
	_, err = client.Convert(context.Background(), bsconv.Direction("sideways"), 2081, 6, 1)
	require.Error(t, err)
	require.EqualValues(t, 0, requests.Load())
}

func TestConvertWithoutValidationSurfacesAPIError(t *testing.T) {
	t.Parallel()
	server, requests := newTestServer(t, nil)
	client := newTestClient(server.URL, ClientWithValidation(false))
	_, err := client.ADToBS(context.Background(), 2024, 13, 1)
	var apiError *APIError
	require.ErrorAs(t, err, &apiError)
	require.Equal(t, http.StatusBadRequest, apiError.StatusCode)
	require.Equal(t, "month must be between 1 and 12", apiError.Message)
	require.False(t, apiError.Retryable())
	require.EqualValues(t, 1, requests.Load())
}

func TestConvertRetriesTransientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	server, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) bool {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
			return true
		case 2:
			writeEnvelope(w, http.StatusTooManyRequests, map[string]any{"success": false, "error": "rate limit exceeded"})
			return true
		default:
			return false
		}
	})
	client := newTestClient(server.URL)
	output, err := client.ADToBS(context.Background(), 2024, 10, 15)
	require.NoError(t, err)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
	require.EqualValues(t, 3, requests.Load())
}

func TestConvertGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	server, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) bool {
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
		return true
	})
	client := newTestClient(server.URL, ClientWithRetry(2, time.Millisecond, time.Millisecond))
	_, err := client.ADToBS(context.Background(), 2024, 10, 15)
	var apiError *APIError
	require.ErrorAs(t, err, &apiError)
	require.Equal(t, http.StatusInternalServerError, apiError.StatusCode)
	require.Equal(t, "boom", apiError.Message)
	require.EqualValues(t, 2, requests.Load())
}

func TestConvertUnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) bool {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": false, "error": "nope"})
		return true
	})
	client := newTestClient(server.URL)
	_, err := client.ADToBS(context.Background(), 2024, 10, 15)
	var apiError *APIError
	require.ErrorAs(t, err, &apiError)
	require.Equal(t, "nope", apiError.Message)
}

func TestToday(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t, nil)
	location := time.FixedZone("NPT", 5*60*60+45*60)
	client := newTestClient(server.URL, ClientWithLocation(location))
	before := xtime.Today(location)
	result, err := client.Today(context.Background())
	require.NoError(t, err)
	if xtime.Today(location) != before {
		t.Skip("date changed during the test")
	}
	require.Equal(t, bsconv.NewADDate(before.Year, int(before.Month), before.Day), result.Input)
	expected, err := bsconv.ADToBS(before.Year, int(before.Month), before.Day)
	require.NoError(t, err)
	require.Equal(t, expected, result.Output)
}

func TestConvertBatch(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t, nil)
	client := newTestClient(server.URL, ClientWithBatchConcurrency(2))
	results := client.ConvertBatch(
		context.Background(),
		bsconv.DirectionADToBS,
		[]Input{
			{Year: 2024, Month: 10, Day: 15},
			{Year: 2024, Month: 13, Day: 1},
			{Year: 1943, Month: 4, Day: 14},
			{Year: 2024, Month: 2, Day: 30},
		},
	)
	require.Len(t, results, 4)
	require.Empty(t, cmp.Diff(
		[]bsconv.Date{
			bsconv.NewADDate(2024, 10, 15),
			bsconv.NewADDate(2024, 13, 1),
			bsconv.NewADDate(1943, 4, 14),
			bsconv.NewADDate(2024, 2, 30),
		},
		[]bsconv.Date{results[0].Input, results[1].Input, results[2].Input, results[3].Input},
	))
	require.NoError(t, results[0].Err)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), results[0].Output)
	require.ErrorIs(t, results[1].Err, bsconv.ErrInvalidMonth)
	require.NoError(t, results[2].Err)
	require.Equal(t, bsconv.NewBSDate(2000, 1, 1), results[2].Output)
	require.ErrorIs(t, results[3].Err, bsconv.ErrInvalidDayForMonth)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "ad-to-bs-2024-10-15", CacheKey(bsconv.DirectionADToBS, 2024, 10, 15))
	require.Equal(t, "bs-to-ad-2081-06-29", CacheKey(bsconv.DirectionBSToAD, 2081, 6, 29))
	require.Equal(t, "ad-to-bs-2024-01-05", CacheKey(bsconv.DirectionADToBS, 2024, 1, 5))
}

// newTestServer returns a server implementing the conversion API with bsconv.
//
// If intercept is non-nil and returns true, the request is considered handled.
func newTestServer(
	t *testing.T,
	intercept func(http.ResponseWriter, *http.Request) bool,
) (*httptest.Server, *atomic.Int64) {
	requests := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if intercept != nil && intercept(w, r) {
			return
		}
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if len(parts) != 4 {
			writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "error": "not found"})
			return
		}
		direction, err := bsconv.ParseDirection(parts[0])
		if err != nil {
			writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "error": "not found"})
			return
		}
		values := make([]int, 3)
		for i, part := range parts[1:] {
			if values[i], err = strconv.Atoi(part); err != nil {
				writeEnvelope(w, http.StatusBadRequest, map[string]any{"success": false, "error": "year, month and day must be integers"})
				return
			}
		}
		result, err := bsconv.ConvertDirection(direction, values[0], values[1], values[2])
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"input":   dateJSON(result.Input),
			"result":  dateJSON(result.Output),
		})
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func newTestClient(baseURL string, options ...ClientOption) Client {
	return NewClient(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		append(
			[]ClientOption{
				ClientWithBaseURL(baseURL),
				ClientWithRetry(3, time.Millisecond, 2*time.Millisecond),
			},
			options...,
		)...,
	)
}

func dateJSON(date bsconv.Date) map[string]int {
	return map[string]int{"year": date.Year, "month": date.Month, "day": date.Day}
}

func writeEnvelope(w http.ResponseWriter, statusCode int, value map[string]any) {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("marshal envelope: %v", err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}
