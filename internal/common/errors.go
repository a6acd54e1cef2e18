package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorResourceConflict(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusConflict,
		Code:       "RESOURCE_CONFLICT",
		Message:    messageOrDefault(msg, "Resource conflict"),
	}
}

func HTTPErrorUnprocessable(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "UNPROCESSABLE_ENTITY",
		Message:    messageOrDefault(msg, "Unprocessable entity"),
	}
}

var badRequestKinds = []error{
	domain.ErrZeroAmount,
	domain.ErrSumOfSharesMustBePositive,
	domain.ErrIncorrectPath,
	domain.ErrInvalidAncillaryData,
	domain.ErrUnsupportedOperation,
	domain.ErrEmptyPlan,
	domain.ErrQuoterNotProvided,
}

var notFoundKinds = []error{
	domain.ErrUnknownVenue,
	domain.ErrUnknownToken,
	domain.ErrInvalidPool,
}

var conflictKinds = []error{
	domain.ErrSlippageToleranceExceeded,
	domain.ErrDeadlinePassed,
}

var unprocessableKinds = []error{
	domain.ErrInsufficientLiquidity,
	domain.ErrArithmeticOverflow,
	domain.ErrDivisionByZero,
}

// HTTPErrorFor maps an engine error onto the HTTP error returned to clients.
func HTTPErrorFor(err error) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	msg := err.Error()
	switch {
	case isAny(err, badRequestKinds):
		return HTTPErrorBadRequest(msg)
	case isAny(err, notFoundKinds):
		return HTTPErrorNotFound(msg)
	case isAny(err, conflictKinds):
		return HTTPErrorResourceConflict(msg)
	case isAny(err, unprocessableKinds):
		return HTTPErrorUnprocessable(msg)
	}
	return HTTPErrorInternalError(msg)
}

func isAny(err error, kinds []error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
