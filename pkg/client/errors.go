package client

import "fmt"

// APIError represents an error response from the Quickwit API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quickwit API error %d: %s", e.StatusCode, e.Message)
}

// NetworkError reports a transport failure: connection refused, timeout,
// DNS resolution or a body that was cut off mid-read.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response of %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorResponse is the JSON structure for API errors. Quickwit answers with
// "message"; some proxies in front of it use "error".
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
