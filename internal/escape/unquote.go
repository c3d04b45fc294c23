// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go4.org/mem"
)

// An Error reports a problem decoding the contents of a string, and the
// offset within the input where decoding could not proceed.
type Error struct {
	Offset int
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset) }

func (e *Error) Unwrap() error { return e.Err }

var (
	errIncomplete  = errors.New("incomplete escape sequence")
	errBadEscape   = errors.New("invalid escape character")
	errBadHex      = errors.New("invalid Unicode escape")
	errLoneLow     = errors.New("unpaired low surrogate")
	errMissingLow  = errors.New("high surrogate without low surrogate")
	errInvalidUTF8 = errors.New("invalid UTF-8 in string")
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// for a UTF-16 high surrogate must be immediately followed by a \u escape for
// a low surrogate, and the pair decodes to a single code point. Unlike a
// lenient decoder, Unquote reports an error of concrete type *Error for any
// invalid escape, unpaired surrogate, or if the result is not valid UTF-8.
func Unquote(src mem.RO) ([]byte, error) {
	if off := invalidUTF8(src); off >= 0 {
		return nil, &Error{Offset: off, Err: errInvalidUTF8}
	}
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	putByte := func(bs ...byte) { dec = append(dec, bs...) }
	base := 0 // offset of src relative to the original input
	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))
		esc := base + i

		src = src.SliceFrom(i + 1)
		base += i + 1
		if src.Len() == 0 {
			return nil, &Error{Offset: esc, Err: errIncomplete}
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		base++
		switch c {
		case '"', '\\', '/':
			putByte(c)
		case 'b':
			putByte('\b')
		case 'f':
			putByte('\f')
		case 'n':
			putByte('\n')
		case 'r':
			putByte('\r')
		case 't':
			putByte('\t')
		case 'u':
			r, n, err := decodeUTF16(src)
			if err != nil {
				return nil, &Error{Offset: esc, Err: err}
			}
			dec = utf8.AppendRune(dec, r)
			src = src.SliceFrom(n)
			base += n
		default:
			return nil, &Error{Offset: esc, Err: fmt.Errorf("%w %q", errBadEscape, c)}
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// decodeUTF16 decodes the hex digits of a \u escape from the front of src,
// whose leading "\u" has already been consumed. If the code is a high
// surrogate, the low surrogate escape that must follow is consumed too.
// It returns the decoded rune and the number of bytes of src consumed.
func decodeUTF16(src mem.RO) (rune, int, error) {
	if src.Len() < 4 {
		return 0, 0, errIncomplete
	}
	hi, err := parseHex(src.SliceTo(4))
	if err != nil {
		return 0, 0, err
	}
	switch {
	case hi >= 0xDC00 && hi <= 0xDFFF:
		return 0, 0, errLoneLow
	case hi < 0xD800 || hi > 0xDBFF:
		return hi, 4, nil
	}

	// The code is a high surrogate, so the next six bytes must be \uXXXX
	// encoding a low surrogate.
	if src.Len() < 10 || src.At(4) != '\\' || src.At(5) != 'u' {
		return 0, 0, errMissingLow
	}
	lo, err := parseHex(src.Slice(6, 10))
	if err != nil {
		return 0, 0, err
	} else if lo < 0xDC00 || lo > 0xDFFF {
		return 0, 0, errMissingLow
	}
	return 0x10000 + (hi&0x3FF)<<10 + (lo & 0x3FF), 10, nil
}

// invalidUTF8 returns the offset of the first byte of src that is not part of
// a valid UTF-8 sequence, or -1 if src is entirely valid.
func invalidUTF8(src mem.RO) int {
	for off := 0; src.Len() != 0; {
		r, n := mem.DecodeRune(src)
		if r == utf8.RuneError && n <= 1 {
			return off
		}
		src = src.SliceFrom(n)
		off += n
	}
	return -1
}

func parseHex(data mem.RO) (rune, error) {
	var v rune
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("%w: invalid hex digit %q", errBadHex, b)
		}
	}
	return v, nil
}
