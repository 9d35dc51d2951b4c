package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/journal/internal/storage"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "media"), "/media")
	require.NoError(t, err)
	return b
}

func TestBackend_UploadWritesUnderRoot(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	location, err := b.Upload(ctx, "e1/m1_cat.jpg", strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(b.Root(), "e1", "m1_cat.jpg"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))

	entries, err := os.ReadDir(filepath.Join(b.Root(), "e1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file should be left behind")
}

func TestBackend_UploadRejectsEscapingKeys(t *testing.T) {
	b := newBackend(t)

	_, err := b.Upload(context.Background(), "../outside.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestBackend_Delete(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	location, err := b.Upload(ctx, "e1/a.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, location))
	_, err = os.Stat(location)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, b.Delete(ctx, location), "deleting twice is fine")
	assert.ErrorIs(t, b.Delete(ctx, "/etc/passwd"), storage.ErrNotManaged)
}

func TestBackend_DeleteDir(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.Upload(ctx, "e1/a.png", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e1/b.png", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, b.DeleteDir(ctx, "e1"))
	_, err = os.Stat(filepath.Join(b.Root(), "e1"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, b.DeleteDir(ctx, "missing"))
	assert.Error(t, b.DeleteDir(ctx, ".."))
	assert.Error(t, b.DeleteDir(ctx, ""))
}

func TestBackend_ListDirs(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.Upload(ctx, "e1/a.png", strings.NewReader("abc"))
	require.NoError(t, err)
	_, err = b.Upload(ctx, "e2/b.png", strings.NewReader("de"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(b.Root(), "stray.txt"), []byte("x"), 0644))

	dirs, err := b.ListDirs(ctx)
	require.NoError(t, err)
	require.Len(t, dirs, 2)

	sizes := map[string]int64{}
	for _, d := range dirs {
		assert.True(t, d.IsDir)
		assert.False(t, d.ModifiedAt.IsZero())
		sizes[d.Name] = d.Size
	}
	assert.Equal(t, map[string]int64{"e1": 3, "e2": 2}, sizes)
}

func TestBackend_URL(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	location, err := b.Upload(ctx, "e1/m1_my photo.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	u, err := b.URL(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "/media/e1/m1_my%20photo.jpg", u)

	_, err = b.URL(ctx, "/somewhere/else.jpg")
	assert.ErrorIs(t, err, storage.ErrNotManaged)
}
