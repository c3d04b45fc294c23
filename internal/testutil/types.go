// Package testutil defines support code for unit tests.
package testutil

import (
	"fmt"

	"github.com/creachadair/jdoc"
)

// A Member is one key-value member of an object, as reported by Shape.
type Member struct {
	Key   string
	Value any
}

// Shape converts the tree rooted at n into plain Go values suitable for
// comparison with cmp.Diff. Arrays become []any, and objects become []Member
// in their original order so that duplicate keys and order are preserved.
// Numbers become float64, strings become string, raw values become
// Raw, and constants become true, false, or nil.
//
// Invalid nodes and dangling references are reported as Invalid.
func Shape(n jdoc.Node) any {
	switch n.Kind() {
	case jdoc.Null:
		return nil
	case jdoc.True:
		return true
	case jdoc.False:
		return false
	case jdoc.Number:
		return n.Number()
	case jdoc.String:
		return n.Text()
	case jdoc.Raw:
		return Raw(n.Text())
	case jdoc.Array:
		out := []any{}
		for elt := range n.Children() {
			out = append(out, Shape(elt))
		}
		return out
	case jdoc.Object:
		out := []Member{}
		for m := range n.Children() {
			out = append(out, Member{Key: m.Key(), Value: Shape(m)})
		}
		return out
	default:
		return Invalid{}
	}
}

// Raw marks the text of a raw value reported by Shape.
type Raw string

// Invalid marks an invalid node or dangling reference reported by Shape.
type Invalid struct{}

func (Invalid) String() string { return "<invalid>" }

// Keys returns the keys of the members of n in order, or nil if n is not an
// object.
func Keys(n jdoc.Node) []string {
	if !n.IsObject() {
		return nil
	}
	var keys []string
	for m := range n.Children() {
		keys = append(keys, m.Key())
	}
	return keys
}

// MustPrint renders n with jdoc.Print and panics if that fails.
func MustPrint(n jdoc.Node) string {
	s, err := jdoc.Print(n)
	if err != nil {
		panic(fmt.Sprintf("print %v: %v", n.Kind(), err))
	}
	return s
}
