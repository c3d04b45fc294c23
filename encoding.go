// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"strings"

	"github.com/creachadair/jdoc/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value, as the printer writes it. The
// contents are escaped and double quotation marks are added. Invalid UTF-8
// bytes are replaced by the escaped Unicode replacement rune.
func Quote(src string) string { return string(escape.AppendQuote(nil, mem.S(src))) }

// Unquote decodes a JSON string value, as the parser reads it. Double
// quotation marks are removed, and escape sequences are replaced with their
// unescaped equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence, an
// unpaired UTF-16 surrogate, or invalid UTF-8 in src.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
