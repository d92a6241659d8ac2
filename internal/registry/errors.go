// Package registry defines domain-specific errors
package registry

import "errors"

var (
	ErrInvalidIdentifier = errors.New("identifiers may contain only letters, digits and underscore")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrNilEntry          = errors.New("cannot register nil")
	ErrNoInterpreter     = errors.New("no inline interpreter registered")
)
