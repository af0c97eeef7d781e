package relay

import (
	"errors"
	"strings"
)

const genericUpstreamMessage = "Internal Server Error"

// ConfigurationError means the relay cannot reach the completion capability because of
// a deployment defect, such as a missing credential. The call is never attempted.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "relay is not configured"
	}
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UpstreamError wraps a failed completion call.
type UpstreamError struct {
	Err error
}

// Error returns the upstream message when there is one.
func (e *UpstreamError) Error() string {
	if e.Err == nil || strings.TrimSpace(e.Err.Error()) == "" {
		return genericUpstreamMessage
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError is a malformed Turn Request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsUpstreamError(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}
