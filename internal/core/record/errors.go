// Package record defines domain-specific errors
package record

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid record identifier")
	ErrInvalidVersion    = errors.New("invalid record version")
	ErrNilSpec           = errors.New("record spec cannot be nil")
	ErrRecordNotFound    = errors.New("spec record not found")

	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("invalid time range: since is after before")
)
