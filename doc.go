// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jdoc implements an in-memory JSON document model with a parser and
// a printer.
//
// # Documents
//
// JSON values are stored as trees of nodes in a Doc. A Node is a small handle
// that names one value in a Doc. Construct values with the methods of a Doc,
// and assemble them into arrays and objects with the mutation methods of Node:
//
//	d := jdoc.NewDoc()
//	obj := d.Object()
//	obj.AddString("name", "Jack")
//	obj.AddNumber("age", 42)
//	tags, _ := obj.AddArray("tags")
//	tags.Append(d.String("sailor"))
//
// Arrays and objects preserve the order of their contents. An object may hold
// more than one member with the same key; lookup by key returns the first.
// Key lookup by Find and the Detach, Delete, and Replace methods that take
// keys ignores ASCII case; FindCase does not.
//
// A value belongs to at most one container. Detaching a value from its
// container returns ownership to the caller, who may insert it elsewhere or
// delete it. Deleting a container deletes its contents. A Node for a value
// that has been deleted becomes invalid, and methods on an invalid Node report
// zero values or ErrInvalidNode.
//
// # References
//
// A reference is a node that presents the content of another value without
// owning it. Deleting a reference does not affect its target. Accessors on a
// reference report the content of the target; if the target has been deleted
// the reference is dangling, and printing or comparing it fails.
//
// # Parsing
//
// Parse, ParseWithLength, and ParseWithOpts construct a tree from JSON text.
// In case of error, the parser returns an error of concrete type
// *jdoc.SyntaxError that reports where parsing stopped:
//
//	v, err := jdoc.Parse(input)
//	if err != nil {
//	   var serr *jdoc.SyntaxError
//	   errors.As(err, &serr)
//	   log.Fatalf("Parse failed at %v: %q", serr.Location, serr.Remainder())
//	}
//
// # Printing
//
// Print and PrintUnformatted render a tree as JSON text. PrintPreallocated
// renders into a caller-provided buffer without allocating, and fails if the
// output does not fit.
package jdoc
