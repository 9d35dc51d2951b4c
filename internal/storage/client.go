package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotManaged is returned by URL for locations outside the backend.
var ErrNotManaged = errors.New("location not managed by this backend")

// FileInfo contains metadata about a directory or object in a backend.
type FileInfo struct {
	Name       string
	Path       string
	IsDir      bool
	Size       int64
	ModifiedAt time.Time
}

// Backend stores media objects under slash-separated keys of the form
// "{dir}/{name}". Every object lives in exactly one top-level directory.
type Backend interface {
	// Upload writes content under key and returns the location to persist.
	// A partially written object is never visible under key.
	Upload(ctx context.Context, key string, content io.Reader) (string, error)

	// Delete removes the object at a location returned by Upload.
	// Missing objects are not an error.
	Delete(ctx context.Context, location string) error

	// DeleteDir removes a top-level directory and everything below it.
	// A missing directory is not an error.
	DeleteDir(ctx context.Context, dir string) error

	// ListDirs returns the top-level directories, with ModifiedAt set to the
	// newest modification inside each.
	ListDirs(ctx context.Context) ([]FileInfo, error)

	// URL returns a locator clients can fetch a stored location from.
	URL(ctx context.Context, location string) (string, error)
}

// FilterDirs filters a directory list by a predicate function
func FilterDirs(dirs []FileInfo, predicate func(FileInfo) bool) []FileInfo {
	var filtered []FileInfo
	for _, d := range dirs {
		if predicate(d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
