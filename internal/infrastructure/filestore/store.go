// Package filestore holds the working and reference file stores.
package filestore

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// Store is a flat, name-addressed object store.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the object atomically; readers never see a partial file.
	Write(ctx context.Context, name string, data []byte) error
}

// CleanName strips any directory part from name. Working files are
// addressed by bare file name only.
func CleanName(name string) (string, error) {
	n := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if n == "" || n == "." || n == ".." || n == "/" {
		return "", ErrInvalidName
	}
	return n, nil
}
