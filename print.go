// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"math"
	"strconv"

	"github.com/creachadair/jdoc/internal/escape"
	"github.com/creachadair/mds/stack"
	"go4.org/mem"
)

// Print renders n as JSON text. Elements of arrays and members of objects are
// separated by ", ", and keys are separated from values by ": ".
//
// Print fails if n or any value it contains is invalid, if a reference in the
// tree refers to a deleted value, or if a raw value is empty.
func Print(n Node) (string, error) { return PrintBuffered(n, 256, true) }

// PrintUnformatted renders n as JSON text with no space between elements.
func PrintUnformatted(n Node) (string, error) { return PrintBuffered(n, 256, false) }

// PrintBuffered renders n as JSON text, starting with a buffer of size bytes.
// A good guess at the size of the output reduces reallocation. If pretty is
// true, the output is spaced as for Print; otherwise as for PrintUnformatted.
func PrintBuffered(n Node, size int, pretty bool) (string, error) {
	w := &printer{buf: make([]byte, 0, max(size, 1)), limit: -1, pretty: pretty}
	if err := w.render(n); err != nil {
		return "", err
	}
	return string(w.buf), nil
}

// PrintPreallocated renders n as JSON text into buf, without allocating
// additional space for the output. The capacity of the output is len(buf).
// It returns the number of bytes written, and true, if the complete output
// fits within the capacity. If the output does not fit, or if rendering fails
// for any of the reasons described by Print, it returns false and the
// contents of buf are unspecified.
//
// The output is identical to that of Print (if pretty is true) or
// PrintUnformatted (if pretty is false). No terminator is added, so a buffer
// whose length is exactly the length of the output is sufficient.
func PrintPreallocated(n Node, buf []byte, pretty bool) (int, bool) {
	w := &printer{buf: buf[:0:len(buf)], limit: len(buf), pretty: pretty}
	if err := w.render(n); err != nil {
		return 0, false
	}
	return len(w.buf), true
}

// JSON returns the text of n as rendered by Print, or "" if n cannot be
// rendered.
func (n Node) JSON() string {
	s, err := Print(n)
	if err != nil {
		return ""
	}
	return s
}

// A printer accumulates the rendered text of a value.
type printer struct {
	buf    []byte
	limit  int // if ≥ 0, the maximum length of buf
	pretty bool
	tmp    []byte
}

// A printFrame records an array or object whose contents are being rendered.
type printFrame struct {
	d      *Doc
	next   ref // the next child to render, or none
	object bool
	count  int // children rendered so far
}

// write appends data to the output, or reports ErrCapacity if that would
// exceed the limit.
func (w *printer) write(data []byte) error {
	if w.limit >= 0 && len(w.buf)+len(data) > w.limit {
		return ErrCapacity
	}
	w.buf = append(w.buf, data...)
	return nil
}

func (w *printer) writeString(s string) error {
	if w.limit >= 0 && len(w.buf)+len(s) > w.limit {
		return ErrCapacity
	}
	w.buf = append(w.buf, s...)
	return nil
}

func (w *printer) writeQuoted(s string) error {
	src := mem.S(s)
	if w.limit >= 0 && len(w.buf)+escape.QuotedLen(src) > w.limit {
		return ErrCapacity
	}
	w.buf = escape.AppendQuote(w.buf, src)
	return nil
}

func (w *printer) separators() (elem, key string) {
	if w.pretty {
		return ", ", ": "
	}
	return ",", ":"
}

// render writes the complete text of n to the output. Nested values are
// handled by an explicit stack rather than by recursion.
func (w *printer) render(n Node) error {
	stk := stack.New[*printFrame]()
	sep, keySep := w.separators()

	// value writes a single value. For an array or object, it writes the opening
	// bracket and pushes a frame to render the contents.
	value := func(n Node) error {
		c, s := n.content()
		if s == nil {
			if n.Valid() {
				return ErrDanglingReference
			}
			return ErrInvalidNode
		}
		switch s.kind {
		case Null:
			return w.writeString("null")
		case True:
			return w.writeString("true")
		case False:
			return w.writeString("false")
		case Number:
			w.tmp = appendNumber(w.tmp[:0], s.num)
			return w.write(w.tmp)
		case String:
			return w.writeQuoted(s.text)
		case Raw:
			if s.text == "" {
				return ErrEmptyRaw
			}
			return w.writeString(s.text)
		case Array, Object:
			open := "["
			if s.kind == Object {
				open = "{"
			}
			if err := w.writeString(open); err != nil {
				return err
			}
			stk.Push(&printFrame{d: c.d, next: s.first, object: s.kind == Object})
			return nil
		default:
			return ErrInvalidNode
		}
	}

	if err := value(n); err != nil {
		return err
	}
	for {
		top, ok := stk.Peek(0)
		if !ok {
			return nil
		}
		if top.next == none {
			end := "]"
			if top.object {
				end = "}"
			}
			if err := w.writeString(end); err != nil {
				return err
			}
			stk.Pop()
			continue
		}

		child := top.d.node(top.next)
		top.next = top.d.slots[top.next].next
		if top.count > 0 {
			if err := w.writeString(sep); err != nil {
				return err
			}
		}
		top.count++
		if top.object {
			if err := w.writeQuoted(child.Key()); err != nil {
				return err
			} else if err := w.writeString(keySep); err != nil {
				return err
			}
		}
		if err := value(child); err != nil {
			return err
		}
	}
}

// appendNumber appends the text of v to buf. Values with no fractional part
// are written as integers, others in decimal notation with the fewest digits
// that represent v exactly. JSON has no representation for NaN or infinities,
// so those are written as null.
func appendNumber(buf []byte, v float64) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}
