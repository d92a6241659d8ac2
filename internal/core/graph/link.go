// Package graph provides link definitions
package graph

import "fmt"

// Link is a directed edge between two node sockets. The same shape serves
// data links (output socket to input socket) and control links (branch name
// to control input); a graph keeps the two lists separate because control
// links are never consulted for data availability.
type Link struct {
	FromNode   string `json:"from_node"`
	FromSocket string `json:"from_socket"`
	ToNode     string `json:"to_node"`
	ToSocket   string `json:"to_socket"`
}

// Validate checks the endpoints are named.
func (l *Link) Validate() error {
	if l.FromNode == "" || l.FromSocket == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidLink)
	}
	if l.ToNode == "" || l.ToSocket == "" {
		return fmt.Errorf("%w: missing target", ErrInvalidLink)
	}
	return nil
}

func (l *Link) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", l.FromNode, l.FromSocket, l.ToNode, l.ToSocket)
}
