package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when the secret phrase reference is
	// absent or points at nothing.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidNumeric is returned for non-numeric shard or gas values.
	ErrInvalidNumeric = errors.New("invalid numeric field")
	// ErrInvalidEndpoint is returned for a missing or malformed RPC URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrInvalidAccount is returned when the account index is outside [0, count).
	ErrInvalidAccount = errors.New("invalid account derivation")
	// ErrUnsupported is returned for settings the signing path cannot honor.
	ErrUnsupported = errors.New("unsupported setting")
	// ErrInvalidSettings is returned when the settings file cannot be used.
	ErrInvalidSettings = errors.New("invalid settings file")
)

// ConfigurationError reports a missing or invalid configuration input.
// Kind is one of the Err* sentinels above, so callers can match it with
// errors.Is.
type ConfigurationError struct {
	Kind  error
	Field string
	// Value is the offending input. It is left empty for credential fields.
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind.
func (e *ConfigurationError) Is(target error) bool {
	return e.Kind == target
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(kind error, field, value string, err error) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Field: field, Value: value, Err: err}
}
