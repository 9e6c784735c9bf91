// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsdateserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bufdev/bsdate/internal/bsdate/bsdateconfig"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	for _, test := range []struct {
		desc           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{
			desc:           "ad to bs",
			path:           "/api/ad-to-bs/2024/10/15",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"input":{"year":2024,"month":10,"day":15},"result":{"year":2081,"month":6,"day":29}}`,
		},
		{
			desc:           "bs to ad",
			path:           "/api/bs-to-ad/2081/6/29",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"input":{"year":2081,"month":6,"day":29},"result":{"year":2024,"month":10,"day":15}}`,
		},
		{
			desc:           "epoch",
			path:           "/api/ad-to-bs/1943/4/14",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"input":{"year":1943,"month":4,"day":14},"result":{"year":2000,"month":1,"day":1}}`,
		},
		{
			desc:           "invalid month",
			path:           "/api/ad-to-bs/2024/13/1",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"month must be between 1 and 12"}`,
		},
		{
			desc:           "invalid day",
			path:           "/api/bs-to-ad/2081/6/32",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"day 32 does not exist in month 6"}`,
		},
		{
			desc:           "year out of range",
			path:           "/api/bs-to-ad/2100/1/1",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"BS year must be between 2000 and 2099"}`,
		},
		{
			desc:           "result out of range",
			path:           "/api/bs-to-ad/2099/12/30",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"BS 2099-12-30 converts to a date outside the supported AD range 1943-2042"}`,
		},
		{
			desc:           "non-integer",
			path:           "/api/ad-to-bs/2024/oct/15",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"year, month and day must be integers"}`,
		},
		{
			desc:           "unknown route",
			path:           "/api/sideways/2024/10/15",
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"success":false,"error":"not found"}`,
		},
		{
			desc:           "calendar",
			path:           "/api/calendar/2081",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"year":2081,"months":[31,31,32,32,31,30,30,30,29,30,30,30],"days":366}`,
		},
		{
			desc:           "calendar out of range",
			path:           "/api/calendar/1999",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"BS year must be between 2000 and 2099"}`,
		},
		{
			desc:           "health",
			path:           "/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
	} {
		recorder := serve(server, http.MethodGet, test.path)
		require.Equal(t, test.expectedStatus, recorder.Code, test.desc)
		require.JSONEq(t, test.expectedBody, recorder.Body.String(), test.desc)
		require.NotEmpty(t, recorder.Header().Get("X-Request-Id"), test.desc)
	}
}

func TestToday(t *testing.T) {
	t.Parallel()
	server := NewServer(
		newTestLogger(),
		newTestServerConfig(t),
		ServerWithClock(func() time.Time {
			return time.Date(2024, time.October, 14, 20, 0, 0, 0, time.UTC)
		}),
		ServerWithLocation(time.FixedZone("NPT", 5*60*60+45*60)),
	)
	// 20:00 UTC is already the next day in Nepal.
	recorder := serve(server, http.MethodGet, "/api/today")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(
		t,
		`{"success":true,"input":{"year":2024,"month":10,"day":15},"result":{"year":2081,"month":6,"day":29}}`,
		recorder.Body.String(),
	)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	request := httptest.NewRequest(http.MethodGet, "/api/ad-to-bs/2024/10/15", nil)
	request.Header.Set("Origin", "https://example.com")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	config := newTestServerConfig(t)
	config.RateLimitRequests = 2
	server := NewServer(newTestLogger(), config)
	for range 2 {
		require.Equal(t, http.StatusOK, serve(server, http.MethodGet, "/api/ad-to-bs/2024/10/15").Code)
	}
	recorder := serve(server, http.MethodGet, "/api/ad-to-bs/2024/10/15")
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.JSONEq(t, `{"success":false,"error":"rate limit exceeded"}`, recorder.Body.String())
	// Health checks are not rate limited.
	require.Equal(t, http.StatusOK, serve(server, http.MethodGet, "/health").Code)
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	serve(server, http.MethodGet, "/api/ad-to-bs/2024/10/15")
	serve(server, http.MethodGet, "/api/ad-to-bs/2024/13/1")
	serve(server, http.MethodGet, "/api/bs-to-ad/2081/x/1")
	recorder := serve(server, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	require.Contains(t, body, `bsdate_conversions_total{direction="ad-to-bs",outcome="success"} 1`)
	require.Contains(t, body, `bsdate_conversions_total{direction="ad-to-bs",outcome="invalid_month"} 1`)
	require.Contains(t, body, `bsdate_conversions_total{direction="bs-to-ad",outcome="bad_request"} 1`)
	require.Contains(t, body, `bsdate_http_requests_total{method="GET",path="/api/ad-to-bs/:year/:month/:day",status="400"} 1`)
	require.Contains(t, body, "bsdate_http_request_duration_seconds_bucket")
}

func TestMetricsCountRecoveredPanics(t *testing.T) {
	t.Parallel()
	testServer := newTestServer(t)
	testServer.(*server).echo.GET("/api/broken", func(echo.Context) error {
		panic("broken handler")
	})
	recorder := serve(testServer, http.MethodGet, "/api/broken")
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.JSONEq(t, `{"success":false,"error":"internal server error"}`, recorder.Body.String())
	body := serve(testServer, http.MethodGet, "/metrics").Body.String()
	require.Contains(t, body, `bsdate_http_requests_total{method="GET",path="/api/broken",status="500"} 1`)
}

func TestServe(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() {
		errC <- server.Serve(ctx, listener)
	}()
	response, err := http.Get("http://" + listener.Addr().String() + "/api/bs-to-ad/2081/6/29")
	require.NoError(t, err)
	data, err := io.ReadAll(response.Body)
	require.NoError(t, response.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, true, decoded["success"])
	cancel()
	require.NoError(t, <-errC)
}

func newTestServer(t *testing.T) Server {
	return NewServer(newTestLogger(), newTestServerConfig(t))
}

func newTestServerConfig(t *testing.T) bsdateconfig.ServerConfig {
	config := bsdateconfig.DefaultConfig().Server
	// Tests issue many requests from a single address.
	config.RateLimitRequests = 1000
	require.Equal(t, []string{"*"}, config.CORSAllowedOrigins)
	return config
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(server Server, method string, path string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(""))
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}
