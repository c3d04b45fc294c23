// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"iter"
	"math"
)

// Kind is the type of a JSON value stored in a Node.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid Kind = iota // invalid or deleted node
	False               // constant: false
	True                // constant: true
	Null                // constant: null
	Number              // number
	String              // string
	Array               // array of values
	Object              // object of key-value members
	Raw                 // pre-formatted JSON text, rendered verbatim
)

var kindStr = [...]string{
	Invalid: "invalid",
	False:   "false",
	True:    "true",
	Null:    "null",
	Number:  "number",
	String:  "string",
	Array:   "array",
	Object:  "object",
	Raw:     "raw",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[v]
}

// ref is the index of a slot in the node arena of a Doc. The zero ref is
// reserved and denotes "no node".
type ref int32

const none ref = 0

// A Doc is an arena that holds the nodes of one or more JSON value trees.
// A zero Doc is ready for use.
//
// Nodes are created by the constructor methods of a Doc, and live until they
// are deleted. A Doc is not safe for concurrent use without external
// synchronization; distinct Docs are independent.
type Doc struct {
	slots []slot
	free  []ref
	live  int
}

// NewDoc constructs a new empty Doc.
func NewDoc() *Doc { return new(Doc) }

// Live reports the number of nodes currently allocated in d.
func (d *Doc) Live() int { return d.live }

// A slot is the storage for a single node in the arena.
//
// Exactly one of num, text, or the child list is meaningful, according to
// kind. A reference node has a non-zero link and no children of its own.
type slot struct {
	kind Kind
	gen  uint32 // advances each time the slot is freed
	used bool

	num  float64
	ival int
	text string
	key  string

	keyConst  bool // key is stored as given, not copied
	textConst bool // text is stored as given, not copied
	link      Node // for array and object references, the borrowed node

	parent, first, last ref
	next, prev          ref
	count               int // number of children
}

// alloc allocates a fresh slot of the given kind and returns its index.
func (d *Doc) alloc(kind Kind) ref {
	if len(d.slots) == 0 {
		d.slots = make([]slot, 1, 16) // reserve the zero index
	}
	var id ref
	if n := len(d.free); n > 0 {
		id = d.free[n-1]
		d.free = d.free[:n-1]
	} else {
		if len(d.slots) > math.MaxInt32 {
			panic("jdoc: node arena is full")
		}
		d.slots = append(d.slots, slot{})
		id = ref(len(d.slots) - 1)
	}
	s := &d.slots[id]
	*s = slot{kind: kind, gen: s.gen, used: true}
	d.live++
	return id
}

// release returns a single slot to the free list. The caller is responsible
// for having unlinked it from any parent.
func (d *Doc) release(id ref) {
	s := &d.slots[id]
	*s = slot{gen: s.gen + 1}
	d.free = append(d.free, id)
	d.live--
}

func (d *Doc) node(id ref) Node { return Node{d: d, id: id, gen: d.slots[id].gen} }

// A Node is a handle to a single JSON value stored in a Doc.  Nodes are
// comparable, and two Node values are equal if they denote the same value.
// The zero Node is not valid.
//
// A Node remains valid until it (or a container it belongs to) is deleted.
// Methods on an invalid Node report zero values or ErrInvalidNode.
type Node struct {
	d   *Doc
	id  ref
	gen uint32
}

// slot returns the storage for n, or nil if n is not valid.
func (n Node) slot() *slot {
	if n.d == nil || n.id <= 0 || int(n.id) >= len(n.d.slots) {
		return nil
	}
	s := &n.d.slots[n.id]
	if !s.used || s.gen != n.gen {
		return nil
	}
	return s
}

// content returns the node whose value n presents, following a reference
// link if n is a reference. It returns an invalid node if n or the target of
// its reference is not valid.
func (n Node) content() (Node, *slot) {
	s := n.slot()
	if s == nil {
		return Node{}, nil
	}
	if s.link.d == nil {
		return n, s
	}
	t := s.link.slot()
	if t == nil {
		return Node{}, nil
	}
	return s.link, t
}

// Valid reports whether n refers to a live node.
func (n Node) Valid() bool { return n.slot() != nil }

// Doc returns the document that stores n, or nil for the zero Node.
func (n Node) Doc() *Doc { return n.d }

// Kind reports the kind of value n holds. A reference reports the kind of the
// value it refers to. It returns Invalid if n is not valid.
func (n Node) Kind() Kind {
	if _, s := n.content(); s != nil {
		return s.kind
	}
	return Invalid
}

// IsInvalid reports whether n is not a valid node, or is a dangling reference.
func (n Node) IsInvalid() bool { return n.Kind() == Invalid }

// IsNull reports whether n is a null value.
func (n Node) IsNull() bool { return n.Kind() == Null }

// IsBool reports whether n is a Boolean value, true or false.
func (n Node) IsBool() bool { k := n.Kind(); return k == True || k == False }

// IsTrue reports whether n is the constant true.
func (n Node) IsTrue() bool { return n.Kind() == True }

// IsFalse reports whether n is the constant false.
func (n Node) IsFalse() bool { return n.Kind() == False }

// IsNumber reports whether n is a number.
func (n Node) IsNumber() bool { return n.Kind() == Number }

// IsString reports whether n is a string.
func (n Node) IsString() bool { return n.Kind() == String }

// IsArray reports whether n is an array.
func (n Node) IsArray() bool { return n.Kind() == Array }

// IsObject reports whether n is an object.
func (n Node) IsObject() bool { return n.Kind() == Object }

// IsRaw reports whether n is a raw JSON fragment.
func (n Node) IsRaw() bool { return n.Kind() == Raw }

// IsReference reports whether n borrows its content from elsewhere, either
// as an array or object reference, or as a string reference.
func (n Node) IsReference() bool {
	s := n.slot()
	return s != nil && (s.link.d != nil || s.textConst)
}

// IsDangling reports whether n is a reference whose target has been deleted.
func (n Node) IsDangling() bool {
	s := n.slot()
	return s != nil && s.link.d != nil && !s.link.Valid()
}

// KeyIsConstant reports whether the key of n was added as a constant, meaning
// the caller's string is retained as given rather than copied.
func (n Node) KeyIsConstant() bool {
	s := n.slot()
	return s != nil && s.keyConst
}

// Number returns the numeric value of n, or 0 if n is not a number.
func (n Node) Number() float64 {
	if _, s := n.content(); s != nil && s.kind == Number {
		return s.num
	}
	return 0
}

// Int returns the integer view of a number, saturated to the range of a
// signed 32-bit integer. It returns 0 if n is not a number.
func (n Node) Int() int {
	if _, s := n.content(); s != nil && s.kind == Number {
		return s.ival
	}
	return 0
}

// Text returns the payload of a string or raw value, or "" for other kinds.
func (n Node) Text() string {
	if _, s := n.content(); s != nil && (s.kind == String || s.kind == Raw) {
		return s.text
	}
	return ""
}

// Key returns the key of n if it is a member of an object, or "".
func (n Node) Key() string {
	if s := n.slot(); s != nil {
		return s.key
	}
	return ""
}

// Parent returns the container n belongs to. It returns an invalid node if n
// is at the top level of its tree.
func (n Node) Parent() Node {
	s := n.slot()
	if s == nil || s.parent == none {
		return Node{}
	}
	return n.d.node(s.parent)
}

// Len returns the number of elements in an array or members in an object.
// It returns 0 for other kinds.
func (n Node) Len() int {
	if _, s := n.content(); s != nil && (s.kind == Array || s.kind == Object) {
		return s.count
	}
	return 0
}

// Children returns an iterator over the elements of an array or the members
// of an object, in order. It yields nothing for other kinds. The iterator may
// safely be used to visit a node that is then deleted or detached.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		c, s := n.content()
		if s == nil {
			return
		}
		for id := s.first; id != none; {
			next := c.d.slots[id].next
			if !yield(c.d.node(id)) {
				return
			}
			id = next
		}
	}
}

// Index returns the element at offset i of an array (or member of an
// object), or an invalid node if i is out of range.
func (n Node) Index(i int) Node {
	c, s := n.content()
	if s == nil || i < 0 || i >= s.count {
		return Node{}
	}
	id := s.first
	for ; i > 0 && id != none; i-- {
		id = c.d.slots[id].next
	}
	if id == none {
		return Node{}
	}
	return c.d.node(id)
}

// Find returns the first member of an object whose key matches key without
// regard to ASCII case, or an invalid node if there is no such member.
func (n Node) Find(key string) Node { return n.findKey(key, false) }

// FindCase returns the first member of an object whose key is exactly key, or
// an invalid node if there is no such member.
func (n Node) FindCase(key string) Node { return n.findKey(key, true) }

// Has reports whether an object has a member whose key matches key without
// regard to ASCII case.
func (n Node) Has(key string) bool { return n.Find(key).Valid() }

func (n Node) findKey(key string, caseSensitive bool) Node {
	c, s := n.content()
	if s == nil || s.kind != Object {
		return Node{}
	}
	for id := s.first; id != none; id = c.d.slots[id].next {
		if keyMatch(c.d.slots[id].key, key, caseSensitive) {
			return c.d.node(id)
		}
	}
	return Node{}
}

func keyMatch(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return asciiEqualFold(a, b)
}

// asciiEqualFold reports whether a and b are equal under ASCII case folding.
// Bytes outside the ASCII range must match exactly.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// saturate returns the integer view of v, clamped to the range of a signed
// 32-bit integer.
func saturate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}
