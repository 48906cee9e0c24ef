package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/quickwit-mcp/internal/editor"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/timerange"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeQuickwitError = "QUICKWIT_ERROR"
	ErrCodeNetworkError  = "NETWORK_ERROR"
	ErrCodeDecodeError   = "DECODE_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeTimeout       = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapQuickwitError converts a client or input error to a coded error.
func WrapQuickwitError(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	coded = classify(err)
	slog.Warn("tool call failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

func classify(err error) *CodedError {
	var apiErr *client.APIError
	var netErr *client.NetworkError
	var decErr *client.DecodeError
	var timeoutErr net.Error

	switch {
	case errors.Is(err, editor.ErrInvalidMaxHits), errors.Is(err, timerange.ErrInvalidRange):
		return &CodedError{Code: ErrCodeInvalidInput, Message: err.Error()}
	case errors.As(err, &apiErr):
		code := ErrCodeQuickwitError
		if apiErr.StatusCode == 404 {
			code = ErrCodeNotFound
		}
		return &CodedError{Code: code, Message: apiErr.Message, Cause: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		return &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	case errors.As(err, &netErr):
		return &CodedError{Code: ErrCodeNetworkError, Message: "quickwit unreachable", Cause: err}
	case errors.As(err, &decErr):
		return &CodedError{Code: ErrCodeDecodeError, Message: "unexpected response from quickwit", Cause: err}
	default:
		return &CodedError{Code: ErrCodeQuickwitError, Message: err.Error(), Cause: err}
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
