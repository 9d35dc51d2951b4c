// Package local implements storage.Backend on a directory tree.
//
// Keys map to paths below the root directory and the persisted location is
// that path, e.g. "media/{entryID}/{mediaID}_{filename}" for the root
// "media". Writes go to a temp file in the target directory first and are
// renamed into place.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/journal/internal/storage"
)

const tempPrefix = ".upload-"

// Backend implements storage.Backend for the local filesystem.
type Backend struct {
	root      string
	urlPrefix string
}

var _ storage.Backend = (*Backend)(nil)

// New creates the root directory if needed. urlPrefix is the path media is
// served under, e.g. "/media".
func New(root, urlPrefix string) (*Backend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Backend{
		root:      filepath.Clean(root),
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root returns the media root directory.
func (b *Backend) Root() string {
	return b.root
}

func (b *Backend) Upload(ctx context.Context, key string, content io.Reader) (string, error) {
	target, err := b.resolve(key)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create entry dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, tempPrefix)
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := io.Copy(tmpFile, readerWithContext(ctx, content)); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("move media into place: %w", err)
	}
	return target, nil
}

func (b *Backend) Delete(ctx context.Context, location string) error {
	if _, err := b.relative(location); err != nil {
		return err
	}
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *Backend) DeleteDir(ctx context.Context, dir string) error {
	if dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
		return fmt.Errorf("invalid media dir %q", dir)
	}
	return os.RemoveAll(filepath.Join(b.root, dir))
}

func (b *Backend) ListDirs(ctx context.Context) ([]storage.FileInfo, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, err
	}

	var dirs []storage.FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(b.root, entry.Name())
		info := storage.FileInfo{Name: entry.Name(), Path: path, IsDir: true}
		err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.ModTime().After(info.ModifiedAt) {
				info.ModifiedAt = fi.ModTime()
			}
			if !d.IsDir() {
				info.Size += fi.Size()
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		dirs = append(dirs, info)
	}
	return dirs, nil
}

func (b *Backend) URL(ctx context.Context, location string) (string, error) {
	rel, err := b.relative(location)
	if err != nil {
		return "", err
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.urlPrefix + "/" + strings.Join(segments, "/"), nil
}

// resolve maps a key to a path, refusing keys that escape the root.
func (b *Backend) resolve(key string) (string, error) {
	target := filepath.Join(b.root, filepath.FromSlash(key))
	if _, err := b.relative(target); err != nil {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return target, nil
}

func (b *Backend) relative(location string) (string, error) {
	rel, err := filepath.Rel(b.root, filepath.Clean(location))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", storage.ErrNotManaged
	}
	return rel, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
