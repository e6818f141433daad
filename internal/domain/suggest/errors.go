package suggest

import (
	"errors"
	"fmt"
)

// ErrAgent wraps every inference transport/format failure so the HTTP
// layer can map the whole family to 502.
var ErrAgent = errors.New("agent analysis failed")

// ConfigError names a required environment variable that was missing.
type ConfigError struct {
	Variable string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing environment variable: %s", e.Variable)
}

func (e *ConfigError) Unwrap() error { return ErrAgent }

// Errorf builds an agent error with a formatted diagnostic.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrAgent}, args...)...)
}
