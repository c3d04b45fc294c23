// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"strings"

	"github.com/creachadair/mds/mapset"
	"github.com/creachadair/mds/stack"
)

// Append adds item to the end of array n.
//
// Append reports an error if n is not an array, if item is n or contains n
// directly or through a reference, if item belongs to a different Doc, or if
// item is already a member of some other container (use Detach to remove it
// first). If item has a key from a previous object membership, the key is
// discarded.
func (n Node) Append(item Node) error {
	is, err := n.checkInsert(Array, item)
	if err != nil {
		return err
	}
	is.key, is.keyConst = "", false
	n.d.appendChild(n.id, item.id)
	return nil
}

// Add adds item to the end of object n with a copy of the given key.
// If n already has a member with that key, the new member is added anyway;
// objects may contain duplicate keys, in insertion order.
//
// Add reports an error if n is not an object, if key is empty, or for any of
// the conditions reported by Append.
func (n Node) Add(key string, item Node) error { return n.addMember(key, item, false) }

// AddConst is as Add, but retains key as given rather than copying it, and
// marks the key of item as constant.
func (n Node) AddConst(key string, item Node) error { return n.addMember(key, item, true) }

func (n Node) addMember(key string, item Node, constKey bool) error {
	if key == "" {
		return ErrEmptyKey
	}
	is, err := n.checkInsert(Object, item)
	if err != nil {
		return err
	}
	if constKey {
		is.key = key
	} else {
		is.key = strings.Clone(key)
	}
	is.keyConst = constKey
	n.d.appendChild(n.id, item.id)
	return nil
}

// AppendReference adds a reference to target at the end of array n.
// The target is not owned by n, and may belong to a different Doc.
func (n Node) AppendReference(target Node) error {
	if !n.Valid() {
		return ErrInvalidNode
	}
	r, err := n.d.Reference(target)
	if err != nil {
		return err
	}
	return n.d.cleanup(r, n.Append(r))
}

// AddReference adds a reference to target to object n under a copy of key.
// The target is not owned by n, and may belong to a different Doc.
func (n Node) AddReference(key string, target Node) error {
	if !n.Valid() {
		return ErrInvalidNode
	}
	r, err := n.d.Reference(target)
	if err != nil {
		return err
	}
	return n.d.cleanup(r, n.Add(key, r))
}

// Reference constructs a node in d that refers to target without owning it.
// The target may be of any kind, and may belong to any Doc. Deleting the
// reference does not affect target.
func (d *Doc) Reference(target Node) (Node, error) {
	_, s := target.content()
	if s == nil {
		return Node{}, ErrInvalidNode
	}
	return d.reference(target, s.kind)
}

// AddNull adds a new null member to object n, and returns the new member.
func (n Node) AddNull(key string) (Node, error) { return n.addNew(key, (*Doc).Null) }

// AddTrue adds a new true member to object n, and returns the new member.
func (n Node) AddTrue(key string) (Node, error) { return n.addNew(key, (*Doc).True) }

// AddFalse adds a new false member to object n, and returns the new member.
func (n Node) AddFalse(key string) (Node, error) { return n.addNew(key, (*Doc).False) }

// AddBool adds a new Boolean member to object n, and returns the new member.
func (n Node) AddBool(key string, v bool) (Node, error) {
	return n.addNew(key, func(d *Doc) Node { return d.Bool(v) })
}

// AddNumber adds a new number member to object n, and returns the new member.
func (n Node) AddNumber(key string, v float64) (Node, error) {
	return n.addNew(key, func(d *Doc) Node { return d.Number(v) })
}

// AddString adds a new string member to object n, and returns the new member.
func (n Node) AddString(key, v string) (Node, error) {
	return n.addNew(key, func(d *Doc) Node { return d.String(v) })
}

// AddRaw adds a new raw member to object n, and returns the new member.
func (n Node) AddRaw(key, v string) (Node, error) {
	return n.addNew(key, func(d *Doc) Node { return d.Raw(v) })
}

// AddObject adds a new empty object member to object n, and returns the new
// member.
func (n Node) AddObject(key string) (Node, error) { return n.addNew(key, (*Doc).Object) }

// AddArray adds a new empty array member to object n, and returns the new
// member.
func (n Node) AddArray(key string) (Node, error) { return n.addNew(key, (*Doc).Array) }

func (n Node) addNew(key string, f func(*Doc) Node) (Node, error) {
	if !n.Valid() {
		return Node{}, ErrInvalidNode
	}
	v := f(n.d)
	if err := n.d.cleanup(v, n.Add(key, v)); err != nil {
		return Node{}, err
	}
	return v, nil
}

// cleanup deletes v if err != nil, and returns err.
func (d *Doc) cleanup(v Node, err error) error {
	if err != nil {
		d.freeTree(v.id)
	}
	return err
}

// Insert inserts item into array n before offset i, shifting later elements
// up. If i is at or past the end of the array, item is appended.
func (n Node) Insert(i int, item Node) error {
	if i < 0 {
		return ErrIndexRange
	}
	ns := n.slot()
	if ns == nil || i >= ns.count {
		return n.Append(item)
	}
	is, err := n.checkInsert(Array, item)
	if err != nil {
		return err
	}
	is.key, is.keyConst = "", false
	n.d.insertBefore(n.Index(i).id, item.id)
	return nil
}

// Detach removes n from the container it belongs to, if any. The detached
// node remains valid, and keeps its key, so that it may be added to another
// container.
func (n Node) Detach() error {
	s := n.slot()
	if s == nil {
		return ErrInvalidNode
	}
	if s.parent != none {
		n.d.unlink(n.id)
	}
	return nil
}

// DetachIndex removes and returns the element at offset i of an array or
// object.
func (n Node) DetachIndex(i int) (Node, error) {
	if _, err := n.checkOwnContainer(Invalid); err != nil {
		return Node{}, err
	}
	c := n.Index(i)
	if !c.Valid() {
		return Node{}, ErrIndexRange
	}
	n.d.unlink(c.id)
	return c, nil
}

// DetachKey removes and returns the first member of object n whose key
// matches key without regard to ASCII case.
func (n Node) DetachKey(key string) (Node, error) {
	if _, err := n.checkOwnContainer(Object); err != nil {
		return Node{}, err
	}
	c := n.Find(key)
	if !c.Valid() {
		return Node{}, keyError(key)
	}
	n.d.unlink(c.id)
	return c, nil
}

// DeleteIndex removes and deletes the element at offset i of an array or
// object.
func (n Node) DeleteIndex(i int) error {
	c, err := n.DetachIndex(i)
	if err != nil {
		return err
	}
	return c.Delete()
}

// DeleteKey removes and deletes the first member of object n whose key
// matches key without regard to ASCII case.
func (n Node) DeleteKey(key string) error {
	c, err := n.DetachKey(key)
	if err != nil {
		return err
	}
	return c.Delete()
}

// ReplaceIndex replaces the element at offset i of array n with item, and
// deletes the element that was replaced.
func (n Node) ReplaceIndex(i int, item Node) error {
	is, err := n.checkInsert(Array, item)
	if err != nil {
		return err
	}
	old := n.Index(i)
	if !old.Valid() {
		return ErrIndexRange
	}
	is.key, is.keyConst = "", false
	n.d.replace(old.id, item.id)
	return nil
}

// ReplaceKey replaces the first member of object n whose key matches key
// without regard to ASCII case with item, and deletes the member that was
// replaced. The key of item is set to a copy of key.
func (n Node) ReplaceKey(key string, item Node) error {
	if key == "" {
		return ErrEmptyKey
	}
	is, err := n.checkInsert(Object, item)
	if err != nil {
		return err
	}
	old := n.Find(key)
	if !old.Valid() {
		return keyError(key)
	}
	is.key, is.keyConst = strings.Clone(key), false
	n.d.replace(old.id, item.id)
	return nil
}

// Delete deletes n along with all the values it owns. If n belongs to a
// container, it is first removed from that container. If n is a reference,
// only the reference is deleted, not the value it refers to.
//
// After Delete, n and any handles to the values it owned are invalid.
func (n Node) Delete() error {
	s := n.slot()
	if s == nil {
		return ErrInvalidNode
	}
	if s.parent != none {
		n.d.unlink(n.id)
	}
	n.d.freeTree(n.id)
	return nil
}

// Duplicate constructs a copy of n in the same Doc. If recurse is true, the
// children of an array or object are copied too; otherwise the copy of a
// container is empty. A reference is copied as a reference to the same
// target. The copy has the same key as n, but does not belong to any
// container.
func (n Node) Duplicate(recurse bool) (Node, error) {
	s := n.slot()
	if s == nil {
		return Node{}, ErrInvalidNode
	}
	d := n.d
	root := d.copySlot(n.id)
	if !recurse || s.link.d != nil {
		return d.node(root), nil
	}

	type pair struct{ src, dst ref }
	stk := []pair{{n.id, root}}
	for len(stk) != 0 {
		p := stk[len(stk)-1]
		stk = stk[:len(stk)-1]
		for c := d.slots[p.src].first; c != none; c = d.slots[c].next {
			nc := d.copySlot(c)
			d.appendChild(p.dst, nc)
			if d.slots[c].first != none {
				stk = append(stk, pair{c, nc})
			}
		}
	}
	return d.node(root), nil
}

// copySlot allocates a new unlinked slot with the same content as id.
func (d *Doc) copySlot(id ref) ref {
	src := d.slots[id] // copy before alloc, which may grow the arena
	nid := d.alloc(src.kind)
	s := &d.slots[nid]
	s.num, s.ival = src.num, src.ival
	s.text, s.textConst = src.text, src.textConst
	s.key, s.keyConst = src.key, src.keyConst
	s.link = src.link
	return nid
}

// checkInsert checks whether item may be inserted as a child of n, which must
// be a non-reference container of the given kind. It returns the slot for item
// if so.
func (n Node) checkInsert(kind Kind, item Node) (*slot, error) {
	if _, err := n.checkOwnContainer(kind); err != nil {
		return nil, err
	}
	is := item.slot()
	switch {
	case is == nil:
		return nil, ErrInvalidNode
	case item.d != n.d:
		return nil, ErrForeignNode
	case item.id == n.id:
		return nil, ErrSelfInsert
	case is.parent != none:
		return nil, ErrHasParent
	}

	// Inserting item into n makes a cycle if n can already be reached from
	// item, either because item is the root of the tree containing n or through
	// a reference somewhere inside item.
	if item.reaches(n) {
		return nil, ErrSelfInsert
	}
	return is, nil
}

// reaches reports whether target can be reached from n by following the
// children of containers and the targets of references.
func (n Node) reaches(target Node) bool {
	var seen mapset.Set[Node] // targets of references already visited
	stk := stack.New[Node]()
	stk.Push(n)
	for !stk.IsEmpty() {
		cur, _ := stk.Pop()
		if cur == target {
			return true
		}
		s := cur.slot()
		if s == nil {
			continue
		}
		if s.link.d != nil {
			if !seen.Has(s.link) {
				seen.Add(s.link)
				stk.Push(s.link)
			}
			continue
		}
		for id := s.first; id != none; id = cur.d.slots[id].next {
			stk.Push(cur.d.node(id))
		}
	}
	return false
}

// checkOwnContainer checks that n is a container that owns its children, and
// if kind != Invalid, that it has the given kind.
func (n Node) checkOwnContainer(kind Kind) (*slot, error) {
	s := n.slot()
	switch {
	case s == nil:
		return nil, ErrInvalidNode
	case s.link.d != nil:
		return nil, ErrReference
	case kind != Invalid && s.kind != kind:
		return nil, kindError(kind, s.kind)
	case s.kind != Array && s.kind != Object:
		return nil, kindError(Array, s.kind)
	}
	return s, nil
}

// appendChild links child at the end of the children of parent.
func (d *Doc) appendChild(parent, child ref) {
	p, c := &d.slots[parent], &d.slots[child]
	c.parent, c.prev, c.next = parent, p.last, none
	if p.last == none {
		p.first = child
	} else {
		d.slots[p.last].next = child
	}
	p.last = child
	p.count++
}

// insertBefore links child into the parent of at, immediately before at.
func (d *Doc) insertBefore(at, child ref) {
	a, c := &d.slots[at], &d.slots[child]
	p := &d.slots[a.parent]
	c.parent, c.prev, c.next = a.parent, a.prev, at
	if a.prev == none {
		p.first = child
	} else {
		d.slots[a.prev].next = child
	}
	a.prev = child
	p.count++
}

// unlink removes child from the children of its parent.
func (d *Doc) unlink(child ref) {
	c := &d.slots[child]
	p := &d.slots[c.parent]
	if c.prev == none {
		p.first = c.next
	} else {
		d.slots[c.prev].next = c.next
	}
	if c.next == none {
		p.last = c.prev
	} else {
		d.slots[c.next].prev = c.prev
	}
	p.count--
	c.parent, c.prev, c.next = none, none, none
}

// replace puts child in the position of old, and deletes old.
func (d *Doc) replace(old, child ref) {
	d.insertBefore(old, child)
	d.unlink(old)
	d.freeTree(old)
}

// freeTree releases id and every node it owns. The caller must have already
// unlinked id from its parent, if any. The children of a reference are not
// visited, since a reference owns none.
func (d *Doc) freeTree(id ref) {
	stk := []ref{id}
	for len(stk) != 0 {
		cur := stk[len(stk)-1]
		stk = stk[:len(stk)-1]
		if s := &d.slots[cur]; s.link.d == nil {
			for c := s.first; c != none; c = d.slots[c].next {
				stk = append(stk, c)
			}
		}
		d.release(cur)
	}
}
