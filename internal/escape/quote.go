// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// AppendQuote appends the JSON encoding of src to dst, enclosed in double
// quotation marks, and returns the extended slice.
//
// Quotation marks, backslashes, and control characters are escaped. Other
// characters are copied through unchanged, except that a byte that is not
// part of a valid UTF-8 sequence is replaced by the escape \ufffd.
func AppendQuote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		// Copy the longest prefix that needs no escaping in one go.
		n := plainPrefix(src)
		dst = mem.Append(dst, src.SliceTo(n))
		src = src.SliceFrom(n)
		if src.Len() == 0 {
			break
		}

		r, n := mem.DecodeRune(src)
		switch {
		case r == '"' || r == '\\':
			dst = append(dst, '\\', byte(r))
		case r < ' ':
			if b := controlEsc[r]; b != 0 {
				dst = append(dst, '\\', b)
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
			}
		default: // r == utf8.RuneError && n == 1
			dst = append(dst, `\ufffd`...)
		}
		src = src.SliceFrom(n)
	}
	return append(dst, '"')
}

// QuotedLen reports the number of bytes AppendQuote would add to encode src.
func QuotedLen(src mem.RO) int {
	size := 2
	for src.Len() != 0 {
		n := plainPrefix(src)
		size += n
		src = src.SliceFrom(n)
		if src.Len() == 0 {
			break
		}
		r, n := mem.DecodeRune(src)
		switch {
		case r == '"' || r == '\\':
			size += 2
		case r < ' ' && controlEsc[r] != 0:
			size += 2
		default:
			size += 6
		}
		src = src.SliceFrom(n)
	}
	return size
}

// plainPrefix returns the length of the longest prefix of src that can be
// copied to the output without escaping.
func plainPrefix(src mem.RO) int {
	i := 0
	for i < src.Len() {
		b := src.At(i)
		if b < utf8.RuneSelf {
			if b < ' ' || b == '"' || b == '\\' {
				return i
			}
			i++
			continue
		}
		r, n := mem.DecodeRune(src.SliceFrom(i))
		if r == utf8.RuneError && n == 1 {
			return i
		}
		i += n
	}
	return i
}
