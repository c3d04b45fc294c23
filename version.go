// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import "fmt"

// The version of the document format and API implemented by this package.
const (
	VersionMajor = 1
	VersionMinor = 7
	VersionPatch = 15
)

// Version returns the version of the package as "major.minor.patch".
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
