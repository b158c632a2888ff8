package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for out-of-range analysis settings.
var ErrInvalidConfig = errors.New("invalid analysis configuration")

// ConfigError names the offending setting.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: %s=%v", ErrInvalidConfig, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
