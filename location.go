package jdoc

import (
	"fmt"

	"go4.org/mem"
)

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// lineColAt returns the line and column of offset pos in the input. An offset
// past the end of the input is treated as the end.
func lineColAt(in mem.RO, pos int) LineCol {
	if pos > in.Len() {
		pos = in.Len()
	}
	lc := LineCol{Line: 1}
	rest := in.SliceTo(pos)
	for {
		i := mem.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		lc.Line++
		rest = rest.SliceFrom(i + 1)
	}
	lc.Column = rest.Len()
	return lc
}
