package io

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/inkpath/inkpath/pkg/errors"
)

// ReadNotebook reads a notebook file from disk. A missing file is
// reported with ErrCodeFileNotFound; other filesystem failures are
// wrapped as internal errors.
func ReadNotebook(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such file: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}

// WriteArtifact writes a rendered artifact to path, creating parent
// directories as needed.
func WriteArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// OutputPath derives the artifact path for a format from the input
// path by swapping the extension: "notes/Page 1.rm" with format "svg"
// becomes "notes/Page 1.svg".
func OutputPath(input, format string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "." + format
}
