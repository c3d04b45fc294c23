// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"math"

	"github.com/creachadair/mds/mapset"
	"github.com/creachadair/mds/stack"
)

// Equal reports whether a and b represent the same JSON value. References are
// compared by their content. Numbers are equal if they differ by no more than
// a small relative tolerance. Objects are equal if their members can be
// paired by key, regardless of order, with equal values in each pair. Members
// with duplicate keys are paired in the order they occur. Keys are compared
// exactly if caseSensitive is true, otherwise without regard to ASCII case.
//
// Equal reports false if either a or b is invalid or contains a dangling
// reference.
func Equal(a, b Node, caseSensitive bool) bool {
	type pair struct{ a, b Node }

	stk := stack.New[pair]()
	stk.Push(pair{a, b})
	for !stk.IsEmpty() {
		p, _ := stk.Pop()
		ca, sa := p.a.content()
		cb, sb := p.b.content()
		if sa == nil || sb == nil || sa.kind != sb.kind {
			return false
		} else if ca == cb {
			// A value is equal to itself, but its descendants must still be
			// checked for dangling references.
			if !isSound(ca) {
				return false
			}
			continue
		}

		switch sa.kind {
		case False, True, Null:
			// nothing more to compare
		case Number:
			if !numbersEqual(sa.num, sb.num) {
				return false
			}
		case String, Raw:
			if sa.text != sb.text {
				return false
			}
		case Array:
			if sa.count != sb.count {
				return false
			}
			x, y := sa.first, sb.first
			for x != none && y != none {
				stk.Push(pair{ca.d.node(x), cb.d.node(y)})
				x, y = ca.d.slots[x].next, cb.d.slots[y].next
			}
		case Object:
			if sa.count != sb.count {
				return false
			}
			// Pair each member of a with the first unpaired member of b that has
			// a matching key. Since the counts agree, every member of b is paired
			// exactly once, and duplicate keys are matched in order.
			var used mapset.Set[ref]
			for x := sa.first; x != none; x = ca.d.slots[x].next {
				key, y := ca.d.slots[x].key, sb.first
				for ; y != none; y = cb.d.slots[y].next {
					if !used.Has(y) && keyMatch(cb.d.slots[y].key, key, caseSensitive) {
						break
					}
				}
				if y == none {
					return false
				}
				used.Add(y)
				stk.Push(pair{ca.d.node(x), cb.d.node(y)})
			}
		default:
			return false
		}
	}
	return true
}

// numbersEqual reports whether a and b are equal within a tolerance scaled to
// their magnitude.
func numbersEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= scale*2.220446049250313e-16
}

// isSound reports whether n and all its descendants are valid and contain no
// dangling references.
func isSound(n Node) bool {
	stk := stack.New[Node]()
	stk.Push(n)
	for !stk.IsEmpty() {
		cur, _ := stk.Pop()
		c, s := cur.content()
		if s == nil {
			return false
		}
		for id := s.first; id != none; id = c.d.slots[id].next {
			stk.Push(c.d.node(id))
		}
	}
	return true
}
