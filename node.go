package blueprint

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"

	json "github.com/goccy/go-json"
)

// NodeKind is the structural classification of a document node.
type NodeKind uint8

const (
	// Leaf holds a scalar governed by a Spec.
	Leaf NodeKind = iota
	// Fixed is an object whose key set belongs to the schema.
	Fixed
	// Collection is a managed array: membership changes only through
	// dedicated editor operations.
	Collection
)

func (k NodeKind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Fixed:
		return "fixed"
	case Collection:
		return "collection"
	}
	return "unknown"
}

// Node is an immutable document tree node. Every modifying method returns a
// new node; unchanged subtrees are shared between versions.
type Node struct {
	kind   NodeKind
	value  any
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewLeaf returns a scalar node.
func NewLeaf(v any) *Node { return &Node{kind: Leaf, value: normalizeLeaf(v)} }

// NewFixed returns an object node. keys gives the order; every key must be
// present in children.
func NewFixed(keys []string, children map[string]*Node) *Node {
	n := &Node{kind: Fixed, keys: slices.Clone(keys), fields: make(map[string]*Node, len(keys))}
	for _, k := range keys {
		n.fields[k] = children[k]
	}
	return n
}

// NewCollection returns a managed array node.
func NewCollection(items ...*Node) *Node {
	return &Node{kind: Collection, items: slices.Clone(items)}
}

// Kind returns the node classification.
func (n *Node) Kind() NodeKind { return n.kind }

// Value returns the scalar held by a leaf. A composite value is returned as a
// copy.
func (n *Node) Value() any { return detach(n.value) }

// Keys returns the ordered keys of a fixed node.
func (n *Node) Keys() []string { return slices.Clone(n.keys) }

// Child returns the child stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.kind != Fixed {
		return nil, false
	}
	c, ok := n.fields[key]
	return c, ok
}

// Item returns the i-th element of a collection.
func (n *Node) Item(i int) (*Node, bool) {
	if n == nil || n.kind != Collection || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// Len returns the number of children.
func (n *Node) Len() int {
	switch n.kind {
	case Fixed:
		return len(n.keys)
	case Collection:
		return len(n.items)
	}
	return 0
}

// At resolves p relative to n.
func (n *Node) At(p Path) (*Node, bool) {
	cur := n
	for _, s := range p {
		var ok bool
		if s.IsIndex {
			cur, ok = cur.Item(s.Index)
		} else {
			cur, ok = cur.Child(s.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Str returns the leaf at p as a string, or "" when absent or not a string.
func (n *Node) Str(p Path) string {
	c, ok := n.At(p)
	if !ok {
		return ""
	}
	s, _ := c.value.(string)
	return s
}

// Interface converts the subtree to plain Go values: map[string]any, []any
// and scalars.
func (n *Node) Interface() any {
	switch n.kind {
	case Fixed:
		m := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].Interface()
		}
		return m
	case Collection:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.Interface()
		}
		return out
	}
	return detach(n.value)
}

// Equal reports structural equality, including key order.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil || n.kind != o.kind {
		return false
	}
	switch n.kind {
	case Leaf:
		return reflect.DeepEqual(n.value, o.value)
	case Fixed:
		if !slices.Equal(n.keys, o.keys) {
			return false
		}
		for _, k := range n.keys {
			if !n.fields[k].Equal(o.fields[k]) {
				return false
			}
		}
		return true
	}
	if len(n.items) != len(o.items) {
		return false
	}
	for i := range n.items {
		if !n.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

// set returns a copy of n with key bound to c. A new key is placed according
// to order; keys missing from order go last.
func (n *Node) set(key string, c *Node, order []string) *Node {
	out := &Node{kind: Fixed, keys: slices.Clone(n.keys), fields: make(map[string]*Node, len(n.fields)+1)}
	for k, v := range n.fields {
		out.fields[k] = v
	}
	if _, exists := out.fields[key]; !exists {
		out.keys = insertOrdered(out.keys, key, order)
	}
	out.fields[key] = c
	return out
}

// unset returns a copy of n without key.
func (n *Node) unset(key string) *Node {
	out := &Node{kind: Fixed, fields: make(map[string]*Node, len(n.fields))}
	for _, k := range n.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.fields[k] = n.fields[k]
	}
	return out
}

func insertOrdered(keys []string, key string, order []string) []string {
	rank := slices.Index(order, key)
	if rank < 0 {
		return append(keys, key)
	}
	for i, k := range keys {
		if r := slices.Index(order, k); r < 0 || r > rank {
			return slices.Insert(keys, i, key)
		}
	}
	return append(keys, key)
}

func (n *Node) withItem(i int, c *Node) *Node {
	items := slices.Clone(n.items)
	items[i] = c
	return &Node{kind: Collection, items: items}
}

func (n *Node) appendItem(c *Node) *Node {
	items := make([]*Node, len(n.items), len(n.items)+1)
	copy(items, n.items)
	return &Node{kind: Collection, items: append(items, c)}
}

func (n *Node) removeItem(i int) *Node {
	return &Node{kind: Collection, items: slices.Delete(slices.Clone(n.items), i, i+1)}
}

// keyOrder supplies the schema key order for the object at a path.
type keyOrder func(Path) []string

// replace returns a copy of n with the node at p swapped for c, copying only
// the nodes along p. A missing final object key is inserted.
func (n *Node) replace(p Path, c *Node, order keyOrder) (*Node, error) {
	return n.replaceFrom(Path{}, p, c, order)
}

func (n *Node) replaceFrom(at, rest Path, c *Node, order keyOrder) (*Node, error) {
	if len(rest) == 0 {
		return c, nil
	}
	s := rest[0]
	if s.IsIndex {
		child, ok := n.Item(s.Index)
		if !ok {
			return nil, fmt.Errorf("no element at %s", at.Index(s.Index))
		}
		nc, err := child.replaceFrom(at.Index(s.Index), rest[1:], c, order)
		if err != nil {
			return nil, err
		}
		return n.withItem(s.Index, nc), nil
	}
	if n.kind != Fixed {
		return nil, fmt.Errorf("no object at %s", at)
	}
	child, ok := n.Child(s.Key)
	if !ok {
		if len(rest) > 1 {
			return nil, fmt.Errorf("no key at %s", at.Field(s.Key))
		}
		var keys []string
		if order != nil {
			keys = order(at)
		}
		return n.set(s.Key, c, keys), nil
	}
	nc, err := child.replaceFrom(at.Field(s.Key), rest[1:], c, order)
	if err != nil {
		return nil, err
	}
	return n.set(s.Key, nc, nil), nil
}

// MarshalJSON renders the subtree with object keys in node order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch n.kind {
	case Fixed:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := n.fields[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Collection:
		buf.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(n.value)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
