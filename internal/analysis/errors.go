package analysis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType classifies a failed analysis call
type ErrorType string

const (
	// ErrTypeTransport indicates the request never produced a response
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeTimeout indicates the bounded wait elapsed
	ErrTypeTimeout ErrorType = "timeout"

	// ErrTypeProtocol indicates a non-2xx response
	ErrTypeProtocol ErrorType = "protocol"

	// ErrTypeDecode indicates a body that is not a JSON object
	ErrTypeDecode ErrorType = "decode"

	// ErrTypeCanceled indicates the caller gave up on the request
	ErrTypeCanceled ErrorType = "canceled"

	// ErrTypeConfiguration indicates invalid client settings
	ErrTypeConfiguration ErrorType = "configuration"
)

// FetchError describes why the analysis endpoint could not be used
type FetchError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Endpoint is the URL that was called
	Endpoint string `json:"endpoint,omitempty"`

	// StatusCode for protocol errors
	StatusCode int `json:"status_code,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *FetchError) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is matches another FetchError of the same type
func (e *FetchError) Is(target error) bool {
	if fe, ok := target.(*FetchError); ok {
		return e.Type == fe.Type
	}
	return false
}

// NewFetchError creates a fetch error
func NewFetchError(errType ErrorType, message, endpoint string) *FetchError {
	return &FetchError{
		Type:     errType,
		Message:  message,
		Endpoint: endpoint,
	}
}

// NewFetchErrorWithCause creates a fetch error with an underlying cause
func NewFetchErrorWithCause(errType ErrorType, message, endpoint string, cause error) *FetchError {
	return &FetchError{
		Type:     errType,
		Message:  message,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewProtocolError creates an error for a non-2xx response
func NewProtocolError(endpoint string, statusCode int, detail string) *FetchError {
	message := fmt.Sprintf("backend returned status %d", statusCode)
	if detail != "" {
		message += ": " + detail
	}
	return &FetchError{
		Type:       ErrTypeProtocol,
		Message:    message,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// classifyRequestError maps an http.Client error onto the taxonomy
func classifyRequestError(err error, endpoint string) *FetchError {
	if errors.Is(err, context.Canceled) {
		return NewFetchErrorWithCause(ErrTypeCanceled, "request canceled", endpoint, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewFetchErrorWithCause(ErrTypeTimeout, "request timed out", endpoint, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewFetchErrorWithCause(ErrTypeTimeout, "request timed out", endpoint, err)
	}

	return NewFetchErrorWithCause(ErrTypeTransport, "request failed", endpoint, err)
}

func errorTypeOf(err error) (ErrorType, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type, true
	}
	return "", false
}

// IsTransportError reports network-level failures, timeouts included
func IsTransportError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && (t == ErrTypeTransport || t == ErrTypeTimeout)
}

// IsTimeoutError reports whether the bounded wait elapsed
func IsTimeoutError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeTimeout
}

// IsProtocolError reports non-2xx responses
func IsProtocolError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeProtocol
}

// IsDecodeError reports unparseable response bodies
func IsDecodeError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeDecode
}

// IsCanceledError reports requests abandoned by the caller
func IsCanceledError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeCanceled
}

// IsConfigurationError reports invalid client settings
func IsConfigurationError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrTypeConfiguration
}
