// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/creachadair/jdoc/internal/escape"
	"github.com/creachadair/mds/stack"
	"go4.org/mem"
)

// DefaultMaxDepth is the maximum nesting depth of arrays and objects the
// parser accepts unless ParseOptions specify otherwise.
const DefaultMaxDepth = 1000

// maxNumberLen is the maximum number of bytes of a numeric literal the
// parser will consider.
const maxNumberLen = 63

// ParseOptions are optional settings for the parser. A nil *ParseOptions is
// ready for use and provides default settings.
type ParseOptions struct {
	// If true, the value must be followed (after optional whitespace) by a NUL
	// byte within the usable input. When parsing a string or a slice without an
	// explicit length, the end of the input counts as a NUL.
	RequireNullTerminated bool

	// The maximum nesting depth of arrays and objects. If zero, the parser uses
	// DefaultMaxDepth.
	MaxDepth int

	// If non-nil, parsed nodes are allocated in this Doc. Otherwise a new Doc
	// is created for each parse.
	Doc *Doc
}

func (o *ParseOptions) requireNUL() bool { return o != nil && o.RequireNullTerminated }

func (o *ParseOptions) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *ParseOptions) doc() *Doc {
	if o == nil || o.Doc == nil {
		return NewDoc()
	}
	return o.Doc
}

// Parse parses a single JSON value from the front of text. Any input after
// the value is ignored. In case of error, the returned error has concrete
// type *SyntaxError.
func Parse(text string) (Node, error) {
	n, _, err := parseInput(mem.S(text), len(text)+1, nil)
	return n, err
}

// ParseWithLength parses a single JSON value from the first length bytes of
// data. The rest of data is not examined, which allows parsing a value
// embedded in a larger stream. If length is negative or greater than
// len(data), ParseWithLength reports a *SyntaxError at offset 0 that wraps
// ErrLengthRange.
func ParseWithLength(data []byte, length int) (Node, error) {
	if length < 0 || length > len(data) {
		err := lengthError(data, length)
		return Node{}, err
	}
	n, _, err := parseInput(mem.B(data[:length]), length, nil)
	return n, err
}

// ParseWithOpts parses a single JSON value from data using the given options.
// The end of data is treated as a NUL terminator. It returns the root of the
// parsed value, and the offset in data just past the end of the value (and
// past trailing whitespace, if a NUL terminator is required). If parsing
// fails, the offset is where the error occurred.
func ParseWithOpts(data []byte, opts *ParseOptions) (Node, int, error) {
	return parseInput(mem.B(data), len(data)+1, opts)
}

// ParseWithLengthOpts parses a single JSON value from the first length bytes
// of data using the given options. It returns the root of the parsed value,
// and the offset in data just past the end of the value.
func ParseWithLengthOpts(data []byte, length int, opts *ParseOptions) (Node, int, error) {
	if length < 0 || length > len(data) {
		err := lengthError(data, length)
		return Node{}, 0, err
	}
	return parseInput(mem.B(data[:length]), length, opts)
}

// lengthError reports a length outside the bounds of data as a syntax error
// at the start of the input.
func lengthError(data []byte, length int) error {
	err := newSyntaxError(mem.B(data), len(data), 0, ErrLengthRange,
		"length %d out of range for %d bytes of input", length, len(data))
	setLastError(err)
	return err
}

func parseInput(in mem.RO, length int, opts *ParseOptions) (Node, int, error) {
	p := &parser{
		in:       in,
		length:   length,
		maxDepth: opts.maxDepth(),
		doc:      opts.doc(),
		stk:      stack.New[frame](),
	}
	root, err := p.parse(opts.requireNUL())
	setLastError(err)
	if err != nil {
		var serr *SyntaxError
		if errors.As(err, &serr) {
			return Node{}, serr.Offset, err
		}
		return Node{}, p.pos, err
	}
	return root, p.pos, nil
}

// A frame records an array or object whose contents are being parsed.
type frame struct {
	id     ref
	object bool
}

// A parser holds the state of a single parse. The usable input is in, plus
// (if length > in.Len()) a virtual NUL terminator at offset in.Len().
type parser struct {
	in       mem.RO
	length   int
	pos      int
	maxDepth int
	doc      *Doc
	stk      *stack.Stack[frame]

	root ref
	key  string // the key for the next object member
}

// at returns the byte at offset i, which must be less than p.length.
func (p *parser) at(i int) byte {
	if i < p.in.Len() {
		return p.in.At(i)
	}
	return 0 // the virtual terminator
}

func (p *parser) canRead(n int) bool { return p.pos+n <= p.length }

func (p *parser) cur() byte {
	if p.pos < p.length {
		return p.at(p.pos)
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < p.length && isSpace(p.at(p.pos)) {
		p.pos++
	}
}

// hasLiteral reports whether the input at the current position begins with
// lit.
func (p *parser) hasLiteral(lit string) bool {
	if !p.canRead(len(lit)) {
		return false
	}
	for i := 0; i < len(lit); i++ {
		if p.at(p.pos+i) != lit[i] {
			return false
		}
	}
	return true
}

func (p *parser) fail(err error, msg string, args ...any) error {
	return newSyntaxError(p.in, p.length, p.pos, err, msg, args...)
}

func (p *parser) failAt(pos int, err error, msg string, args ...any) error {
	return newSyntaxError(p.in, p.length, pos, err, msg, args...)
}

// parse parses a complete value. On failure, any nodes allocated for the
// value are released before returning.
func (p *parser) parse(requireNUL bool) (Node, error) {
	if p.pos == 0 && p.hasLiteral("\xEF\xBB\xBF") {
		p.pos += 3
	}
	p.skipSpace()
	if err := p.parseValue(); err != nil {
		if p.root != none {
			p.doc.freeTree(p.root)
		}
		return Node{}, err
	}
	if requireNUL {
		p.skipSpace()
		if p.pos >= p.length || p.at(p.pos) != 0 {
			p.doc.freeTree(p.root)
			return Node{}, p.fail(ErrTrailingData, "unexpected %s after value", describe(p.cur()))
		}
	}
	return p.doc.node(p.root), nil
}

// parseValue parses a value of any type, including the complete contents of
// any arrays and objects it contains. Nested values are handled by the frame
// stack rather than by recursion, so the depth limit is the only bound on
// nesting.
func (p *parser) parseValue() error {
	for {
		// Parse the next value, starting at the current position. If it is an
		// array or object with contents, open a new frame and proceed to the
		// first element of that frame.
		opened, err := p.parseElement()
		if err != nil {
			return err
		} else if opened {
			continue
		}

		// We have completed a value. Close any frames that end here, and
		// position the parser at the start of the next element if there is one.
		for {
			top, ok := p.stk.Peek(0)
			if !ok {
				return nil // the top-level value is complete
			}
			p.skipSpace()
			if p.cur() == ',' {
				p.pos++
				p.skipSpace()
				if top.object {
					if err := p.parseKey(); err != nil {
						return err
					}
				}
				break // parse the next element of top
			}
			if want := closerFor(top.object); p.cur() != want {
				return p.fail(nil, "expected %q or %q, got %s", ',', want, describe(p.cur()))
			}
			p.pos++
			p.stk.Pop()
		}
	}
}

// parseElement parses a single value at the current position and links it
// into the tree. For a non-empty array or object, it pushes a frame for the
// container, positions the input at its first element, and reports true.
func (p *parser) parseElement() (bool, error) {
	switch ch := p.cur(); {
	case p.pos >= p.length:
		return false, p.fail(nil, "unexpected end of input")
	case ch == 'n' && p.hasLiteral("null"):
		p.pos += 4
		p.attach(p.doc.alloc(Null))
	case ch == 't' && p.hasLiteral("true"):
		p.pos += 4
		p.attach(p.doc.alloc(True))
	case ch == 'f' && p.hasLiteral("false"):
		p.pos += 5
		p.attach(p.doc.alloc(False))
	case ch == '-' || isDigit(ch):
		v, err := p.parseNumber()
		if err != nil {
			return false, err
		}
		id := p.doc.alloc(Number)
		p.doc.slots[id].num = v
		p.doc.slots[id].ival = saturate(v)
		p.attach(id)
	case ch == '"':
		s, err := p.parseString()
		if err != nil {
			return false, err
		}
		id := p.doc.alloc(String)
		p.doc.slots[id].text = s
		p.attach(id)
	case ch == '[' || ch == '{':
		return p.openContainer(ch == '{')
	default:
		return false, p.fail(nil, "unexpected %s", describe(ch))
	}
	return false, nil
}

// openContainer begins an array or object at the current position.
func (p *parser) openContainer(object bool) (bool, error) {
	if p.stk.Len() >= p.maxDepth {
		return false, p.fail(ErrDepthLimit, "nesting depth exceeds %d", p.maxDepth)
	}
	kind := Array
	if object {
		kind = Object
	}
	id := p.doc.alloc(kind)
	p.attach(id)

	p.pos++ // skip the opening bracket
	p.skipSpace()
	if p.cur() == closerFor(object) && p.pos < p.length {
		p.pos++
		return false, nil // empty
	}
	p.stk.Push(frame{id: id, object: object})
	if object {
		if err := p.parseKey(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// parseKey parses an object key and the colon following it, leaving the
// input positioned at the start of the member value.
func (p *parser) parseKey() error {
	if p.cur() != '"' || p.pos >= p.length {
		return p.fail(nil, "expected string key, got %s", describe(p.cur()))
	}
	start := p.pos
	key, err := p.parseString()
	if err != nil {
		return err
	} else if key == "" {
		return p.failAt(start, nil, "empty object key")
	}
	p.skipSpace()
	if p.cur() != ':' || p.pos >= p.length {
		return p.fail(nil, "expected ':' after key, got %s", describe(p.cur()))
	}
	p.pos++
	p.skipSpace()
	p.key = key
	return nil
}

// attach links a newly-allocated node into the value under construction.
func (p *parser) attach(id ref) {
	top, ok := p.stk.Peek(0)
	if !ok {
		p.root = id
		return
	}
	if top.object {
		p.doc.slots[id].key = p.key
		p.key = ""
	}
	p.doc.appendChild(top.id, id)
}

// parseNumber parses a numeric literal at the current position.
//
// Up to maxNumberLen bytes that may occur in a number are considered, and the
// longest prefix of those that forms a valid number is consumed.
func (p *parser) parseNumber() (float64, error) {
	var buf [maxNumberLen]byte
	n := 0
	for n < len(buf) && p.pos+n < p.length && isNumberByte(p.at(p.pos+n)) {
		buf[n] = p.at(p.pos + n)
		n++
	}
	w := floatPrefix(buf[:n])
	if w == 0 {
		return 0, p.fail(nil, "invalid number %q", buf[:n])
	}
	v, err := strconv.ParseFloat(string(buf[:w]), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, p.fail(err, "invalid number %q", buf[:w])
	}
	p.pos += w
	return v, nil
}

// parseString parses a quoted string at the current position and returns
// its decoded value.
func (p *parser) parseString() (string, error) {
	start := p.pos + 1

	// Find the end of the string, to bound the size of the output. The closing
	// quote must lie within the usable input.
	end := start
	for end < p.length && p.at(end) != '"' {
		if p.at(end) == '\\' {
			if end+1 >= p.length {
				return "", p.failAt(end, nil, "incomplete escape at end of input")
			}
			end++
		}
		end++
	}
	if end >= p.length {
		return "", p.failAt(start, nil, "unterminated string")
	}

	dec, err := escape.Unquote(p.in.Slice(start, end))
	if err != nil {
		var eerr *escape.Error
		if errors.As(err, &eerr) {
			return "", p.failAt(start+eerr.Offset, eerr.Err, "invalid string: %v", eerr.Err)
		}
		return "", p.failAt(start, err, "invalid string: %v", err)
	}
	p.pos = end + 1
	return string(dec), nil
}

// floatPrefix returns the length of the longest prefix of b that is a valid
// decimal floating-point literal, or 0 if there is none.
func floatPrefix(b []byte) int {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	start := i
	for i < len(b) && isDigit(b[i]) {
		i++
	}
	nd := i - start
	if i < len(b) && b[i] == '.' {
		j := i + 1
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		if nd+(j-i-1) > 0 {
			nd += j - i - 1
			i = j
		}
	}
	if nd == 0 {
		return 0
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		k := j
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		if j > k {
			i = j
		}
	}
	return i
}

func closerFor(object bool) byte {
	if object {
		return '}'
	}
	return ']'
}

// describe returns a human-readable description of ch for error messages.
func describe(ch byte) string {
	if ch == 0 {
		return "end of input"
	}
	return fmt.Sprintf("%q", ch)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isNumberByte(ch byte) bool {
	return isDigit(ch) || ch == '+' || ch == '-' || ch == 'e' || ch == 'E' || ch == '.'
}
