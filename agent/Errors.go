package agent

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid algorithm configuration. It is
// raised synchronously at construction; a misconfigured algorithm is
// never returned.
type ConfigError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *ConfigError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause of a ConfigError
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns whether an error reports an invalid algorithm
// configuration
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// configErrorf constructs a ConfigError with a formatted cause
func configErrorf(op, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Op: op, Err: fmt.Errorf(format, args...)}
}
