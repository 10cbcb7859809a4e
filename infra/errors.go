package infra

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeout  = errors.New("timeout error")
	ErrNetwork  = errors.New("network error")
	ErrUpstream = errors.New("upstream rejected request")
)

func NewTimeoutError(details string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

// IsRetriable returns true if the error is timeout or network (5xx), so retry makes sense.
func IsRetriable(err error) bool {
	return err != nil && (errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork))
}

type Violation struct {
	Reason   string
	Property string
}

// UpstreamError is a non-2xx answer from the gateway, decoded from its
// error body. Error returns the gateway's own message.
type UpstreamError struct {
	StatusCode int
	Name       string
	Message    string
	Violations []Violation
	kind       error
}

func NewUpstreamError(statusCode int, name, message string, violations []Violation) *UpstreamError {
	kind := ErrUpstream
	switch {
	case statusCode == 504 || statusCode == 408:
		kind = ErrTimeout
	case statusCode >= 500:
		kind = ErrNetwork
	}
	if message == "" {
		message = fmt.Sprintf("gateway responded with status %d", statusCode)
	}
	return &UpstreamError{
		StatusCode: statusCode,
		Name:       name,
		Message:    message,
		Violations: violations,
		kind:       kind,
	}
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.kind
}

// Detail lists the gateway's name and violations, for callers that surface
// upstream diagnostics.
func (e *UpstreamError) Detail() string {
	parts := make([]string, 0, len(e.Violations)+1)
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	for _, v := range e.Violations {
		if v.Property != "" {
			parts = append(parts, v.Property+": "+v.Reason)
		} else {
			parts = append(parts, v.Reason)
		}
	}
	return strings.Join(parts, "; ")
}
