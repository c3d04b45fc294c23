// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import "strings"

// Null constructs a new null value in d.
func (d *Doc) Null() Node { return d.node(d.alloc(Null)) }

// True constructs a new true value in d.
func (d *Doc) True() Node { return d.node(d.alloc(True)) }

// False constructs a new false value in d.
func (d *Doc) False() Node { return d.node(d.alloc(False)) }

// Bool constructs a new Boolean value in d.
func (d *Doc) Bool(v bool) Node {
	if v {
		return d.True()
	}
	return d.False()
}

// Number constructs a new number value in d.
func (d *Doc) Number(v float64) Node {
	id := d.alloc(Number)
	d.slots[id].num = v
	d.slots[id].ival = saturate(v)
	return d.node(id)
}

// String constructs a new string value in d with a copy of s.
func (d *Doc) String(s string) Node {
	id := d.alloc(String)
	d.slots[id].text = strings.Clone(s)
	return d.node(id)
}

// Raw constructs a new raw value in d. The text is emitted verbatim by the
// printer, and must be a well-formed JSON value for the output to be valid.
func (d *Doc) Raw(text string) Node {
	id := d.alloc(Raw)
	d.slots[id].text = strings.Clone(text)
	return d.node(id)
}

// Array constructs a new empty array in d.
func (d *Doc) Array() Node { return d.node(d.alloc(Array)) }

// Object constructs a new empty object in d.
func (d *Doc) Object() Node { return d.node(d.alloc(Object)) }

// StringReference constructs a string value in d that retains s as given
// instead of copying it.
func (d *Doc) StringReference(s string) Node {
	id := d.alloc(String)
	d.slots[id].text = s
	d.slots[id].textConst = true
	return d.node(id)
}

// ArrayReference constructs a node in d that refers to the elements of the
// array target without owning them. The target may belong to any Doc.
// Deleting the reference does not affect target.
func (d *Doc) ArrayReference(target Node) (Node, error) { return d.reference(target, Array) }

// ObjectReference constructs a node in d that refers to the members of the
// object target without owning them. The target may belong to any Doc.
// Deleting the reference does not affect target.
func (d *Doc) ObjectReference(target Node) (Node, error) { return d.reference(target, Object) }

func (d *Doc) reference(target Node, kind Kind) (Node, error) {
	t, s := target.content() // a reference to a reference shares the original
	if s == nil {
		return Node{}, ErrInvalidNode
	} else if s.kind != kind {
		return Node{}, kindError(kind, s.kind)
	}
	id := d.alloc(kind)
	d.slots[id].link = t
	return d.node(id), nil
}

// IntArray constructs an array of numbers from vs.
func (d *Doc) IntArray(vs []int) Node {
	a := d.Array()
	for _, v := range vs {
		d.appendChild(a.id, d.Number(float64(v)).id)
	}
	return a
}

// FloatArray constructs an array of numbers from vs.
func (d *Doc) FloatArray(vs []float64) Node {
	a := d.Array()
	for _, v := range vs {
		d.appendChild(a.id, d.Number(v).id)
	}
	return a
}

// StringArray constructs an array of strings from vs.
func (d *Doc) StringArray(vs []string) Node {
	a := d.Array()
	for _, v := range vs {
		d.appendChild(a.id, d.String(v).id)
	}
	return a
}

// SetNumber sets the value of a number and updates its integer view.
func (n Node) SetNumber(v float64) error {
	s := n.slot()
	if s == nil {
		return ErrInvalidNode
	} else if s.link.d != nil {
		return ErrReference
	} else if s.kind != Number {
		return kindError(Number, s.kind)
	}
	s.num = v
	s.ival = saturate(v)
	return nil
}

// SetText replaces the payload of a string with a copy of text.
// It reports an error if n is a string reference.
func (n Node) SetText(text string) error {
	s := n.slot()
	if s == nil {
		return ErrInvalidNode
	} else if s.kind != String {
		return kindError(String, s.kind)
	} else if s.textConst || s.link.d != nil {
		return ErrReference
	}
	s.text = strings.Clone(text)
	return nil
}

// MustParse parses text as a JSON value, and panics if parsing fails.
// It is intended for use in tests and initializers.
func MustParse(text string) Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}
