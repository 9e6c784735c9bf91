// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsclient

import (
	"fmt"
	"net/http"
)

// APIError is returned when the API answers with an error.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Message is the error message from the response envelope, or the raw body.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("conversion API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("conversion API returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable returns true for rate limiting and server errors.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
