package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"shorts-pipeline/internal/job"
)

// APIError is the error payload every failed request returns.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPErrorHandler maps domain errors onto HTTP statuses for echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, apiErr := mapError(err)
	if jsonErr := c.JSON(status, map[string]APIError{"error": apiErr}); jsonErr != nil {
		log.Printf("[server] Failed to send error response: %v", jsonErr)
	}
}

func mapError(err error) (int, APIError) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, APIError{Code: http.StatusText(echoErr.Code), Message: msg}
	}

	switch {
	case errors.Is(err, job.ErrNotFound):
		return http.StatusNotFound, APIError{Code: "not_found", Message: "job not found"}
	case errors.Is(err, job.ErrInvalidInput):
		return http.StatusBadRequest, APIError{Code: "invalid_input", Message: err.Error()}
	default:
		log.Printf("[server] Unhandled error: %v", err)
		return http.StatusInternalServerError, APIError{Code: "internal_error", Message: "an unexpected error occurred"}
	}
}
