// Package spec defines domain-specific errors
package spec

// PersistenceError reports a spec payload that cannot be serialized or
// rebuilt: a schema source requiring an executor that is absent, a resolved
// value that is not the expected handle, or an unrecognized schema source.
type PersistenceError struct {
	Message string
}

func (e *PersistenceError) Error() string {
	return "persistence error: " + e.Message
}
