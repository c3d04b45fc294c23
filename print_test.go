// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc_test

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"path"
	"testing"

	"github.com/creachadair/jdoc"
	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"
)

//go:embed testdata/*.json
var testFiles embed.FS

// forEachFixture calls f with the name and contents of each test fixture.
func forEachFixture(t *testing.T, f func(t *testing.T, name string, data []byte)) {
	t.Helper()
	names, err := fs.Glob(testFiles, "testdata/*.json")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	} else if len(names) == 0 {
		t.Fatal("No test fixtures found")
	}
	for _, name := range names {
		data, err := testFiles.ReadFile(name)
		if err != nil {
			t.Fatalf("Read %q: %v", name, err)
		}
		t.Run(path.Base(name), func(t *testing.T) { f(t, name, data) })
	}
}

func TestPrint(t *testing.T) {
	d := jdoc.NewDoc()
	video := d.Object()
	video.AddString("name", `Jack ("Bee") Nimble`)
	format, _ := video.AddObject("format")
	format.AddString("type", "rect")
	format.AddNumber("width", 1920)
	format.AddFalse("interlace")
	format.AddNumber("frame rate", 24)

	const wantPretty = `{"name": "Jack (\"Bee\") Nimble", "format": {"type": "rect", "width": 1920, "interlace": false, "frame rate": 24}}`
	const wantPlain = `{"name":"Jack (\"Bee\") Nimble","format":{"type":"rect","width":1920,"interlace":false,"frame rate":24}}`

	if got, err := jdoc.Print(video); err != nil {
		t.Errorf("Print: unexpected error: %v", err)
	} else if got != wantPretty {
		t.Errorf("Print:\ngot  %s\nwant %s", got, wantPretty)
	}
	if got, err := jdoc.PrintUnformatted(video); err != nil {
		t.Errorf("PrintUnformatted: unexpected error: %v", err)
	} else if got != wantPlain {
		t.Errorf("PrintUnformatted:\ngot  %s\nwant %s", got, wantPlain)
	}

	// A small size hint does not change the output.
	if got, err := jdoc.PrintBuffered(video, 1, true); err != nil {
		t.Errorf("PrintBuffered: unexpected error: %v", err)
	} else if got != wantPretty {
		t.Errorf("PrintBuffered:\ngot  %s\nwant %s", got, wantPretty)
	}

	// A member prints as its value alone.
	if got := format.JSON(); got != `{"type": "rect", "width": 1920, "interlace": false, "frame rate": 24}` {
		t.Errorf("Member JSON: got %s", got)
	}
}

func TestPrintNumbers(t *testing.T) {
	d := jdoc.NewDoc()
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{-1, "-1"},
		{3.25, "3.25"},
		{1.0 / 3, "0.3333333333333333"},
		{-2.5e-3, "-0.0025"},
		{123456789, "123456789"},
		{1e21, "1000000000000000000000"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, test := range tests {
		got, err := jdoc.Print(d.Number(test.input))
		if err != nil {
			t.Errorf("Print(%v): unexpected error: %v", test.input, err)
		} else if got != test.want {
			t.Errorf("Print(%v): got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestPrintStrings(t *testing.T) {
	d := jdoc.NewDoc()
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{"a\tb\n", `"a\tb\n"`},
		{"\b\f\r", `"\b\f\r"`},
		{"\x00\x01\x1f", `"\u0000\u0001\u001f"`},
		{"end\v", `"end\u000b"`},
		{`say "hi" \o/`, `"say \"hi\" \\o/"`},
		{"日本 😀", `"日本 😀"`},
		{"bad \xff byte", `"bad \ufffd byte"`},
		{"\x7f", "\"\x7f\""},
	}
	for _, test := range tests {
		for _, v := range []jdoc.Node{d.String(test.input), d.StringReference(test.input)} {
			got, err := jdoc.Print(v)
			if err != nil {
				t.Errorf("Print(%q): unexpected error: %v", test.input, err)
			} else if got != test.want {
				t.Errorf("Print(%q): got %#q, want %#q", test.input, got, test.want)
			}
		}
	}
}

func TestPrintRaw(t *testing.T) {
	d := jdoc.NewDoc()
	arr := d.Array()
	arr.Append(d.Raw(`{"x":[1,2]}`))
	arr.Append(d.Number(3))
	if got := arr.JSON(); got != `[{"x":[1,2]}, 3]` {
		t.Errorf("Print: got %s", got)
	}
}

func TestPrintErrors(t *testing.T) {
	d := jdoc.NewDoc()

	emptyRaw := d.Array()
	emptyRaw.Append(d.Raw(""))

	target := d.Array()
	dangling := d.Object()
	dangling.AddReference("t", target)
	target.Delete()

	deleted := d.Null()
	deleted.Delete()

	tests := []struct {
		name string
		root jdoc.Node
		want error
	}{
		{"EmptyRaw", emptyRaw, jdoc.ErrEmptyRaw},
		{"Dangling", dangling, jdoc.ErrDanglingReference},
		{"Zero", jdoc.Node{}, jdoc.ErrInvalidNode},
		{"Deleted", deleted, jdoc.ErrInvalidNode},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := jdoc.Print(test.root)
			if !errors.Is(err, test.want) {
				t.Errorf("Print: got %q, %v; want %v", got, err, test.want)
			}
			if _, err := jdoc.PrintUnformatted(test.root); !errors.Is(err, test.want) {
				t.Errorf("PrintUnformatted: got %v, want %v", err, test.want)
			}
			if n, ok := jdoc.PrintPreallocated(test.root, make([]byte, 256), true); ok {
				t.Errorf("PrintPreallocated: got %d, true; want failure", n)
			}
			if got := test.root.JSON(); got != "" {
				t.Errorf("JSON: got %q, want empty", got)
			}
		})
	}
}

func TestPrintPreallocated(t *testing.T) {
	forEachFixture(t, func(t *testing.T, _ string, data []byte) {
		v, err := jdoc.Parse(string(data))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		for _, pretty := range []bool{true, false} {
			want, err := jdoc.PrintBuffered(v, 0, pretty)
			if err != nil {
				t.Fatalf("PrintBuffered: %v", err)
			}
			size := len(want)

			for _, slack := range []int{0, 5} {
				buf := make([]byte, size+slack)
				n, ok := jdoc.PrintPreallocated(v, buf, pretty)
				if !ok {
					t.Errorf("PrintPreallocated(pretty=%v, cap=%d): failed", pretty, len(buf))
				} else if got := string(buf[:n]); got != want {
					t.Errorf("PrintPreallocated(pretty=%v): got %s, want %s", pretty, got, want)
				}
			}
			for _, short := range []int{size - 1, size / 2, 0} {
				if n, ok := jdoc.PrintPreallocated(v, make([]byte, short), pretty); ok {
					t.Errorf("PrintPreallocated(pretty=%v, cap=%d): got %d, true; want failure",
						pretty, short, n)
				}
			}
		}
	})
}

func TestRoundTrip(t *testing.T) {
	forEachFixture(t, func(t *testing.T, _ string, data []byte) {
		v, err := jdoc.Parse(string(data))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		first, err := jdoc.Print(v)
		if err != nil {
			t.Fatalf("Print: %v", err)
		}

		// Printing a re-parsed value reproduces the same text.
		w, err := jdoc.Parse(first)
		if err != nil {
			t.Fatalf("Parse printed output: %v", err)
		}
		second, err := jdoc.Print(w)
		if err != nil {
			t.Fatalf("Print: %v", err)
		}
		if diff := cmp.Diff(second, first); diff != "" {
			t.Errorf("Print is not idempotent (-got, +want):\n%s", diff)
		}
		if !jdoc.Equal(v, w, true) {
			t.Error("Re-parsed value is not equal to the original")
		}

		// The output is valid JSON, and differs from the unformatted output
		// only by whitespace between tokens.
		hv, err := hujson.Parse([]byte(first))
		if err != nil {
			t.Fatalf("Printed output is not valid: %v", err)
		}
		hv.Minimize()
		plain, err := jdoc.PrintUnformatted(v)
		if err != nil {
			t.Fatalf("PrintUnformatted: %v", err)
		}
		if diff := cmp.Diff(plain, string(hv.Pack())); diff != "" {
			t.Errorf("Unformatted output (-got, +want):\n%s", diff)
		}

		// The printed output means the same as the input.
		var orig, out any
		if err := json.Unmarshal(data, &orig); err != nil {
			t.Fatalf("Unmarshal input: %v", err)
		}
		if err := json.Unmarshal([]byte(first), &out); err != nil {
			t.Fatalf("Unmarshal output: %v", err)
		}
		if diff := cmp.Diff(out, orig); diff != "" {
			t.Errorf("Printed value (-got, +want):\n%s", diff)
		}
	})
}
