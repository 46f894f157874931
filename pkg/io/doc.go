// Package io handles reading notebook files from disk and writing
// rendered artifacts next to them.
//
// The package wraps filesystem failures in coded errors so callers can
// distinguish a missing input file from a corrupt one:
//
//	data, err := io.ReadNotebook("Page 1.rm")
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // the path was wrong, not the file contents
//	}
//
// Output paths are derived from the input path and the target format,
// so "Page 1.rm" converted to SVG lands at "Page 1.svg".
package io
