// Package node provides the JSON-superset value model built by the YAML
// parser: scalars (null, boolean, int, long, arbitrary-precision decimal,
// string), ordered sequences, and insertion-ordered mappings.
//
// Sequences and mappings are built incrementally through Append and Add,
// which is the entire builder surface the parser requires. Collection types
// are reference types (*Seq, *Map) so that aliased YAML nodes resolve to the
// identical Go object.
package node

import (
	"github.com/shopspring/decimal"
)

// Kind identifies the value kind of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindLong
	KindDecimal
	KindString
	KindSeq
	KindMap
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Node is a value in the tree. The null value is represented by a nil Node;
// use KindOf rather than calling Kind on a possibly-nil interface.
type Node interface {
	Kind() Kind
}

// KindOf returns the kind of n, treating nil as the null value.
func KindOf(n Node) Kind {
	if n == nil {
		return KindNull
	}
	return n.Kind()
}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Int is an integer that fits in 32 bits.
type Int int32

func (Int) Kind() Kind { return KindInt }

// Long is an integer that fits in 64 bits but not 32.
type Long int64

func (Long) Kind() Kind { return KindLong }

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }

// Decimal is an arbitrary-precision decimal number. Integers too wide for
// Long are also represented as Decimal.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) Kind() Kind { return KindDecimal }

// NewDecimal wraps a decimal.Decimal value.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{d}
}

// DecimalFromString parses a decimal from its textual form.
func DecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

// Seq is an ordered sequence of values.
type Seq struct {
	items []Node
}

// NewSeq creates an empty sequence.
func NewSeq() *Seq {
	return &Seq{}
}

func (*Seq) Kind() Kind { return KindSeq }

// Append adds a value at the end of the sequence.
func (s *Seq) Append(n Node) {
	s.items = append(s.items, n)
}

// Len returns the number of elements.
func (s *Seq) Len() int {
	return len(s.items)
}

// Get returns the element at index i and whether the index is in range.
func (s *Seq) Get(i int) (Node, bool) {
	if i < 0 || i >= len(s.items) {
		return nil, false
	}
	return s.items[i], true
}

// Items returns the underlying elements in order.
func (s *Seq) Items() []Node {
	return s.items
}

// Map is a string-keyed mapping that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]Node
}

// NewMap creates an empty mapping.
func NewMap() *Map {
	return &Map{values: make(map[string]Node)}
}

func (*Map) Kind() Kind { return KindMap }

// Contains reports whether key is present.
func (m *Map) Contains(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Add inserts a key/value pair. Adding an existing key replaces its value
// without changing its position; callers that need duplicate detection use
// Contains first.
func (m *Map) Add(key string, n Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = n
}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key string) (Node, bool) {
	n, ok := m.values[key]
	return n, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}
