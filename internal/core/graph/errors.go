// Package graph defines domain-specific errors
package graph

import "errors"

// Structure errors raised while building or mutating a graph instance.
var (
	ErrNilSpec           = errors.New("node spec cannot be nil")
	ErrInvalidNodeName   = errors.New("node names may contain only letters, digits and underscore")
	ErrDuplicateNode     = errors.New("duplicate node name")
	ErrNodeNotFound      = errors.New("node not found")
	ErrSocketNotFound    = errors.New("socket not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrInvalidLink       = errors.New("invalid link")
	ErrLinkLimitExceeded = errors.New("socket link limit exceeded")
	ErrInvalidGraphDict  = errors.New("invalid graph dict")
)
