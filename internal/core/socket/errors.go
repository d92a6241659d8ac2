// Package socket defines domain-specific errors
package socket

import "errors"

// Structure errors raised while building or decoding socket specs.
var (
	ErrDuplicateField  = errors.New("duplicate field name in namespace")
	ErrInvalidName     = errors.New("socket names may contain only letters, digits and underscore")
	ErrMissingItemType = errors.New("dynamic namespace requires an item type")
	ErrNotNamespace    = errors.New("leaf socket cannot carry fields")
	ErrInvalidTypeTag  = errors.New("invalid socket type tag")
)
