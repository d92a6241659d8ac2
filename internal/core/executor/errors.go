// Package executor defines domain-specific errors
package executor

import "fmt"

// ResolutionError reports an executor reference that cannot be materialized:
// an unregistered module path, a missing inline interpreter, or a malformed
// variant.
type ResolutionError struct {
	ModulePath   string
	CallableName string
	Message      string
}

func (e *ResolutionError) Error() string {
	if e.ModulePath != "" {
		return fmt.Sprintf("resolution error for %s.%s: %s", e.ModulePath, e.CallableName, e.Message)
	}
	return "resolution error: " + e.Message
}
