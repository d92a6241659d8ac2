// Package usecases defines analysis-specific errors
package usecases

import (
	"errors"
	"fmt"
)

var (
	ErrBadSnapshot = errors.New("snapshot is structurally invalid")
	ErrUnknownNode = errors.New("unknown node")
)

// CycleError reports a node reachable from itself through link edges in a
// traversal where no cycle was expected.
type CycleError struct {
	Node string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: node %q is reachable from itself through link edges", e.Node)
}

// ComparisonError reports a property-value comparison the difference
// analysis cannot evaluate. It is surfaced, never swallowed.
type ComparisonError struct {
	Node     string
	Property string
	A, B     any
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare property %q of node %q: incompatible values %T and %T",
		e.Property, e.Node, e.A, e.B)
}
