// Package graph provides socket instance trees
package graph

import (
	"fmt"
	"strings"

	"github.com/scinode/nodegraph/internal/core/property"
	"github.com/scinode/nodegraph/internal/core/socket"
)

// Socket is one materialized port on a node. Namespace sockets nest children;
// leaf sockets bind exactly one property holding the socket's value.
type Socket struct {
	Name     string
	FullName string
	TypeTag  socket.TypeTag
	Dynamic  bool
	// LinkLimit caps incoming data links (0 means unlimited).
	LinkLimit int
	Property  *property.Property

	itemType *socket.Spec
	children map[string]*Socket
	order    []string
}

// materialize builds the socket instance tree mirroring sp. A nil spec yields
// an empty static namespace so every node has addressable input/output roots.
func materialize(sp *socket.Spec, fullName string) (*Socket, error) {
	if sp == nil {
		return &Socket{
			Name:     fullName,
			FullName: fullName,
			TypeTag:  socket.TypeNamespace,
			children: map[string]*Socket{},
		}, nil
	}
	s := &Socket{
		Name:     sp.Name,
		FullName: fullName,
		TypeTag:  sp.TypeTag,
		Dynamic:  sp.Dynamic,
	}
	if s.Name == "" {
		s.Name = fullName
	}
	if !sp.IsNamespace() {
		p, err := property.New(s.Name, sp.TypeTag, sp.Default)
		if err != nil {
			return nil, err
		}
		s.Property = p
		return s, nil
	}
	s.children = map[string]*Socket{}
	s.itemType = sp.ItemType
	for _, name := range sp.FieldNames() {
		f, _ := sp.Field(name)
		child, err := materialize(f, fullName+"."+name)
		if err != nil {
			return nil, err
		}
		child.LinkLimit = sp.ChildLinkLimit
		s.children[name] = child
		s.order = append(s.order, name)
	}
	return s, nil
}

// ChildNames returns child socket names in declaration order.
func (s *Socket) ChildNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Child returns the child socket with the given name.
func (s *Socket) Child(name string) (*Socket, bool) {
	c, ok := s.children[name]
	return c, ok
}

// resolve walks a dotted path under s. Dynamic namespaces admit unseen keys
// by materializing the typed child on demand; the second return reports
// whether any socket was created by this walk.
func (s *Socket) resolve(path string) (*Socket, bool, error) {
	cur := s
	created := false
	for _, part := range strings.Split(path, ".") {
		if cur.children == nil {
			return nil, false, fmt.Errorf("%w: %q is a leaf, cannot contain %q",
				ErrSocketNotFound, cur.FullName, part)
		}
		next, ok := cur.children[part]
		if !ok {
			if !cur.Dynamic {
				return nil, false, fmt.Errorf("%w: %q has no child %q", ErrSocketNotFound, cur.FullName, part)
			}
			item := cur.itemType
			child, err := materialize(item, cur.FullName+"."+part)
			if err != nil {
				return nil, false, err
			}
			child.Name = part
			if child.Property != nil {
				child.Property.Name = part
			}
			cur.children[part] = child
			cur.order = append(cur.order, part)
			next = child
			created = true
		}
		cur = next
	}
	return cur, created, nil
}
