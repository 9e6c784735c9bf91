// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsdateserver

import (
	"errors"
	"strconv"
	"time"

	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	outcomeSuccess            = "success"
	outcomeBadRequest         = "bad_request"
	outcomeInvalidMonth       = "invalid_month"
	outcomeInvalidDayForMonth = "invalid_day_for_month"
	outcomeYearOutOfRange     = "year_out_of_range"
	outcomeResultOutOfRange   = "result_out_of_range"
	outcomeError              = "error"
)

type metrics struct {
	conversionsTotal    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		conversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bsdate_conversions_total",
				Help: "Total date conversions by direction and outcome.",
			},
			[]string{"direction", "outcome"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bsdate_http_requests_total",
				Help: "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bsdate_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.conversionsTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// middleware records request counts and latencies by route pattern.
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Write the error response now so the status is known.
			c.Error(err)
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(c.Response().Status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *metrics) observeConversion(direction bsconv.Direction, err error) {
	m.conversionsTotal.WithLabelValues(string(direction), conversionOutcome(err)).Inc()
}

func conversionOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, errNonIntegerParam):
		return outcomeBadRequest
	case errors.Is(err, bsconv.ErrInvalidMonth):
		return outcomeInvalidMonth
	case errors.Is(err, bsconv.ErrInvalidDayForMonth):
		return outcomeInvalidDayForMonth
	case errors.Is(err, bsconv.ErrYearOutOfRange):
		return outcomeYearOutOfRange
	case errors.Is(err, bsconv.ErrResultOutOfRange):
		return outcomeResultOutOfRange
	default:
		return outcomeError
	}
}
