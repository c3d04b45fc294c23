// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jdoc"
	"github.com/creachadair/jdoc/cursor"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

func TestCursor(t *testing.T) {
	v, err := jdoc.Parse(testJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name string
		path []any
		want string
		fail bool
	}{
		{"NilInput", nil, v.JSON(), false},
		{"NoMatch", []any{"nonesuch"}, v.JSON(), true},
		{"WrongType", []any{11}, v.JSON(), true},
		{"CaseMatters", []any{"LIST"}, v.JSON(), true},

		{"ArrayPos", []any{"list", 1}, `{"x": 2}`, false},
		{"ArrayNeg", []any{"list", -1}, `{"x": 2}`, false},
		{"ArrayRange", []any{"o", 25}, `["hi", "yourself"]`, true},
		{"ObjPath", []any{"xyz", "d"}, `true`, false},
		{"ObjIndex", []any{"y", 0}, `"there"`, false},
		{"NilElem", []any{"y", nil, "hello"}, `"there"`, false},

		{"FuncArray", []any{"o", testPathFunc}, `2`, false},
		{"FuncObj", []any{"xyz", testPathFunc}, `3`, false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc}, `true`, true},
		{"BadElem", []any{3.5}, v.JSON(), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(v).Down(tc.path...)
			err := c.Err()
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Down %+v: unexpected error: %v", tc.path, err)
				}
			} else if tc.fail {
				t.Fatalf("Down %+v: got %s, wanted error", tc.path, c.Value().JSON())
			}
			got := c.Value().JSON()
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Down %+v: wrong result (-got, +want):\n%s", tc.path, diff)
			}
		})
	}
}

func TestCursorNavigation(t *testing.T) {
	v := jdoc.MustParse(testJSON)
	c := cursor.New(v)
	if !c.AtOrigin() {
		t.Error("New cursor is not at its origin")
	}
	c.Down("list", 0, "x")
	if err := c.Err(); err != nil {
		t.Fatalf("Down: unexpected error: %v", err)
	}
	if got := len(c.Path()); got != 4 {
		t.Errorf("Path length: got %d, want 4", got)
	}
	if got := c.Up().Value().JSON(); got != `{"x": 1}` {
		t.Errorf("Up: got %s, want {\"x\": 1}", got)
	}
	c.Reset()
	if !c.AtOrigin() || c.Value() != v || c.Origin() != v {
		t.Error("Reset did not return to the origin")
	}
}

func TestPath(t *testing.T) {
	v := jdoc.MustParse(testJSON)
	if got, err := cursor.Path(v, "y", "hello"); err != nil {
		t.Errorf("Path: unexpected error: %v", err)
	} else if got.Text() != "there" {
		t.Errorf("Path: got %q, want there", got.Text())
	}
	if _, err := cursor.PathKind(v, jdoc.Number, "xyz", "q"); err == nil {
		t.Error("PathKind: got nil error for a Boolean, wanted error")
	}
	if got, err := cursor.PathKind(v, jdoc.Array, "o"); err != nil {
		t.Errorf("PathKind: unexpected error: %v", err)
	} else if got.Len() != 2 {
		t.Errorf("PathKind: got length %d, want 2", got.Len())
	}
}

func testPathFunc(v jdoc.Node) (jdoc.Node, error) {
	switch v.Kind() {
	case jdoc.Array, jdoc.Object:
		return v.Doc().Number(float64(v.Len())), nil
	default:
		return jdoc.Node{}, errors.New("not a thing with length")
	}
}
