// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsdateserver implements the HTTP conversion API served by "bsdate serve".
//
// Routes:
//
//	GET /api/ad-to-bs/:year/:month/:day   Convert a Gregorian date to Bikram Sambat
//	GET /api/bs-to-ad/:year/:month/:day   Convert a Bikram Sambat date to Gregorian
//	GET /api/today                        Today's Gregorian date and its Bikram Sambat date
//	GET /api/calendar/:year               Month lengths of a Bikram Sambat year
//	GET /health                           Liveness check
//	GET /metrics                          Prometheus metrics
//
// Conversion responses use the envelope
//
//	{"success": true, "input": {"year": 2024, "month": 10, "day": 15}, "result": {"year": 2081, "month": 6, "day": 29}}
//	{"success": false, "error": "month must be between 1 and 12"}
package bsdateserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bufdev/bsdate/internal/bsdate/bsdateconfig"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// shutdownGracePeriod is how long in-flight requests may take to finish on shutdown.
const shutdownGracePeriod = 10 * time.Second

// Server is the HTTP conversion API.
type Server interface {
	http.Handler
	// Run listens on the configured address and serves until ctx is done,
	// then shuts down gracefully.
	Run(ctx context.Context) error
	// Serve serves on the listener until ctx is done, then shuts down gracefully.
	Serve(ctx context.Context, listener net.Listener) error
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*server)

// ServerWithClock sets the function used to read the current time.
//
// The default is time.Now.
func ServerWithClock(now func() time.Time) ServerOption {
	return func(s *server) {
		s.now = now
	}
}

// ServerWithLocation sets the location used to determine today's date for /api/today.
//
// The default is UTC.
func ServerWithLocation(location *time.Location) ServerOption {
	return func(s *server) {
		s.location = location
	}
}

// NewServer creates a new Server.
func NewServer(logger *slog.Logger, config bsdateconfig.ServerConfig, options ...ServerOption) Server {
	s := &server{
		logger:   logger,
		config:   config,
		now:      time.Now,
		location: time.UTC,
		echo:     echo.New(),
		registry: prometheus.NewRegistry(),
	}
	for _, option := range options {
		option(s)
	}
	s.metrics = newMetrics(s.registry)
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// *** PRIVATE ***

type server struct {
	logger   *slog.Logger
	config   bsdateconfig.ServerConfig
	now      func() time.Time
	location *time.Location
	echo     *echo.Echo
	registry *prometheus.Registry
	metrics  *metrics
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: s.config.RequestTimeout,
		ReadTimeout:       s.config.RequestTimeout,
		WriteTimeout:      s.config.RequestTimeout,
	}
	s.logger.Info("serving conversion API", "address", listener.Addr().String())
	errC := make(chan error, 1)
	go func() {
		errC <- httpServer.Serve(listener)
	}()
	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down conversion API")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) setupMiddleware() {
	// Metrics wrap Recover so recovered panics are counted as 500s, and wrap
	// every later middleware so rejected requests are counted too.
	s.echo.Use(s.metrics.middleware)
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1e6,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}
			if values.Error != nil {
				attrs = append(attrs, "error", values.Error.Error())
			}
			s.logger.Log(c.Request().Context(), levelForStatus(values.Status), "http request", attrs...)
			return nil
		},
	}))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(float64(s.config.RateLimitRequests) / s.config.RateLimitWindow.Seconds()),
				Burst:     s.config.RateLimitRequests,
				ExpiresIn: s.config.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(echo.Context, error) error {
			return echo.NewHTTPError(http.StatusForbidden, "could not identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			s.logger.Warn("rate limit exceeded", "remote_ip", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	}))
}

func (s *server) setupRoutes() {
	api := s.echo.Group("/api")
	api.GET("/ad-to-bs/:year/:month/:day", s.handleADToBS)
	api.GET("/bs-to-ad/:year/:month/:day", s.handleBSToAD)
	api.GET("/today", s.handleToday)
	api.GET("/calendar/:year", s.handleCalendar)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// handleError writes errors returned by handlers and middleware as failure envelopes.
func (s *server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	statusCode := http.StatusInternalServerError
	message := "internal server error"
	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		statusCode = httpError.Code
		switch {
		case statusCode == http.StatusNotFound:
			message = "not found"
		case statusCode == http.StatusMethodNotAllowed:
			message = "method not allowed"
		default:
			if httpErrorMessage, ok := httpError.Message.(string); ok {
				message = httpErrorMessage
			} else {
				message = http.StatusText(statusCode)
			}
		}
	}
	if statusCode >= http.StatusInternalServerError {
		s.logger.Error("http error", "error", err, "method", c.Request().Method, "uri", c.Request().RequestURI)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(statusCode)
	} else {
		err = c.JSON(statusCode, failureEnvelope(message))
	}
	if err != nil {
		s.logger.Error("writing error response", "error", err)
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
