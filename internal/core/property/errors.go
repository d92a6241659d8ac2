// Package property defines domain-specific errors
package property

import "fmt"

// ValidationError reports a value that fails its property's allowed-type or
// allowed-key check. The property's stored value is guaranteed untouched.
type ValidationError struct {
	Property string
	Value    any
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on property %q: %s (got: %v)", e.Property, e.Message, e.Value)
}
