package entries

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/tags"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/media"
	"github.com/mrlokans/journal/internal/storage"
	"github.com/mrlokans/journal/internal/storage/providers/local"
)

type testEnv struct {
	repo      *Repository
	db        *gorm.DB
	tags      *tags.Repository
	mediaRoot string
}

func setup(t *testing.T) testEnv {
	t.Helper()
	return setupWithBackend(t, nil)
}

func setupWithBackend(t *testing.T, wrap func(storage.Backend) storage.Backend) testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDatabase(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	root := filepath.Join(dir, "media")
	var backend storage.Backend
	backend, err = local.New(root, "/media")
	require.NoError(t, err)
	if wrap != nil {
		backend = wrap(backend)
	}

	return testEnv{
		repo:      NewRepository(db.DB, media.NewStore(backend)),
		db:        db.DB,
		tags:      tags.NewRepository(db.DB),
		mediaRoot: root,
	}
}

func file(name string, size int) media.Upload {
	return media.Upload{Filename: name, Content: bytes.NewReader(bytes.Repeat([]byte("x"), size))}
}

func ptr(s string) *string {
	return &s
}

// fixedClock returns successive timestamps one second apart.
func fixedClock(start time.Time) func() entities.Timestamp {
	current := start
	return func() entities.Timestamp {
		ts := entities.Timestamp{Time: current}
		current = current.Add(time.Second)
		return ts
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{
		Title:     "Trip",
		Content:   "Went hiking",
		Tags:      []string{"Nature", "Travel"},
		EntryDate: "2024-05-01",
		Files:     []media.Upload{file("summit.jpg", 4), file("wind.m4a", 2)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "Trip", entry.Title)
	assert.Equal(t, "Went hiking", entry.Content)
	assert.Equal(t, "2024-05-01", entry.EntryDate)
	assert.Equal(t, entry.CreatedAt, entry.UpdatedAt)
	assert.ElementsMatch(t, []string{"Nature", "Travel"}, entry.Tags)

	require.Len(t, entry.Media, 2)
	assert.Equal(t, "summit.jpg", entry.Media[0].Filename)
	assert.Equal(t, entities.MediaTypeImage, entry.Media[0].FileType)
	assert.Equal(t, int64(4), entry.Media[0].FileSize)
	assert.Equal(t, entities.MediaTypeAudio, entry.Media[1].FileType)
	assert.FileExists(t, entry.Media[0].Filepath)
	assert.Equal(t, filepath.Join(env.mediaRoot, id), filepath.Dir(entry.Media[0].Filepath))
}

func TestRepository_CreateDefaultsEntryDate(t *testing.T) {
	env := setup(t)
	env.repo.now = fixedClock(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	id, err := env.repo.Create(context.Background(), "u1", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)

	entry, err := env.repo.Get(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02T10:00:00.000000", entry.EntryDate)
	assert.Equal(t, []string{}, entry.Tags)
	assert.Equal(t, []entities.Media{}, entry.Media)
}

func TestRepository_CreateRejectsEmptyFields(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.repo.Create(ctx, "u1", NewEntry{Title: "", Content: "c"})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "  "})
	assert.ErrorIs(t, err, entities.ErrValidation)

	list, err := env.repo.List(ctx, "u1", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_CreateWithInvalidFileLeavesNothing(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.repo.Create(ctx, "u1", NewEntry{
		Title:   "Trip",
		Content: "c",
		Tags:    []string{"lost"},
		Files:   []media.Upload{file("ok.jpg", 1), file("huge.jpg", int(media.MaxFileSize)+1)},
	})
	require.ErrorIs(t, err, entities.ErrValidation)

	list, err := env.repo.List(ctx, "u1", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := env.tags.AllTags(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all, "tag upserts roll back with the entry")

	entries, err := os.ReadDir(env.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepository_CreateRollbackRemovesWrittenFiles(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// Fails the insert after the files are written.
	require.NoError(t, env.db.Exec("DROP TABLE media").Error)

	_, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Files: []media.Upload{file("a.png", 1)}})
	require.Error(t, err)
	assert.Equal(t, "storage failure: insert media", err.Error())

	entries, err := os.ReadDir(env.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepository_GetScopedToOwner(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)

	entry, err := env.repo.Get(ctx, "u2", id)
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = env.repo.Get(ctx, "u1", "missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRepository_ListFiltersAndOrders(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	create := func(date string, tags ...string) string {
		id, err := env.repo.Create(ctx, "u1", NewEntry{Title: date, Content: "c", EntryDate: date, Tags: tags})
		require.NoError(t, err)
		return id
	}
	jan := create("2024-01-10", "Work")
	feb := create("2024-02-10", "Family", "Work")
	mar := create("2024-03-10", "Family")
	_, err := env.repo.Create(ctx, "u2", NewEntry{Title: "other", Content: "c", EntryDate: "2024-02-15", Tags: []string{"Work"}})
	require.NoError(t, err)

	ids := func(list []entities.Entry) []string {
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = e.ID
		}
		return out
	}

	all, err := env.repo.List(ctx, "u1", ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{mar, feb, jan}, ids(all))
	assert.ElementsMatch(t, []string{"Family", "Work"}, all[1].Tags)

	byTag, err := env.repo.List(ctx, "u1", ListFilter{Tag: "Work"})
	require.NoError(t, err)
	assert.Equal(t, []string{feb, jan}, ids(byTag))
	assert.ElementsMatch(t, []string{"Family", "Work"}, byTag[0].Tags, "filtered results carry the full tag set")

	caseMismatch, err := env.repo.List(ctx, "u1", ListFilter{Tag: "work"})
	require.NoError(t, err)
	assert.Empty(t, caseMismatch, "tag filter matches the stored display text exactly")

	ranged, err := env.repo.List(ctx, "u1", ListFilter{StartDate: "2024-02-10", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, []string{mar, feb}, ids(ranged))

	combined, err := env.repo.List(ctx, "u1", ListFilter{Tag: "Family", EndDate: "2024-02-28"})
	require.NoError(t, err)
	assert.Equal(t, []string{feb}, ids(combined))
}

func TestRepository_UpdateTitleOnly(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.repo.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	id, err := env.repo.Create(ctx, "u1", NewEntry{
		Title: "Old", Content: "Body", Tags: []string{"Keep"}, Files: []media.Upload{file("a.png", 1)},
	})
	require.NoError(t, err)
	before, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)

	ok, err := env.repo.Update(ctx, "u1", id, EntryUpdate{Title: ptr("New")})
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "New", after.Title)
	assert.Equal(t, "Body", after.Content)
	assert.Equal(t, before.EntryDate, after.EntryDate)
	assert.Equal(t, []string{"Keep"}, after.Tags)
	assert.Equal(t, before.Media, after.Media)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt.Time))
}

func TestRepository_UpdateWithoutScalarsKeepsUpdatedAt(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.repo.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Tags: []string{"a"}})
	require.NoError(t, err)
	before, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)

	ok, err := env.repo.Update(ctx, "u1", id, EntryUpdate{
		Tags:  entities.ReplaceTags("b"),
		Files: []media.Upload{file("new.mp4", 3)},
	})
	require.NoError(t, err)
	require.True(t, ok)

	after, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, []string{"b"}, after.Tags)
	require.Len(t, after.Media, 1)
	assert.Equal(t, entities.MediaTypeVideo, after.Media[0].FileType)
}

func TestRepository_UpdateAppendsMedia(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Files: []media.Upload{file("first.jpg", 1)}})
	require.NoError(t, err)

	ok, err := env.repo.Update(ctx, "u1", id, EntryUpdate{Files: []media.Upload{file("second.gif", 1)}})
	require.NoError(t, err)
	require.True(t, ok)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.Len(t, entry.Media, 2)
	assert.Equal(t, "first.jpg", entry.Media[0].Filename)
	assert.Equal(t, "second.gif", entry.Media[1].Filename)
}

func TestRepository_UpdateTagModes(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	_, err = env.repo.Update(ctx, "u1", id, EntryUpdate{Content: ptr("changed")})
	require.NoError(t, err)
	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, entry.Tags)

	_, err = env.repo.Update(ctx, "u1", id, EntryUpdate{Tags: entities.ClearTags()})
	require.NoError(t, err)
	entry, err = env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Empty(t, entry.Tags)
}

func TestRepository_UpdateMissingEntry(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)

	ok, err := env.repo.Update(ctx, "u1", "missing", EntryUpdate{Title: ptr("x"), Files: []media.Upload{file("a.png", 1)}})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.repo.Update(ctx, "u2", id, EntryUpdate{Title: ptr("x")})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.repo.Update(ctx, "u1", "missing", EntryUpdate{Title: ptr("")})
	require.NoError(t, err)
	assert.False(t, ok, "existence is checked before validation")

	entries, err := os.ReadDir(env.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepository_UpdateRejectsEmptyTitle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)

	ok, err := env.repo.Update(ctx, "u1", id, EntryUpdate{Title: ptr(""), Content: ptr("new")})
	require.ErrorIs(t, err, entities.ErrValidation)
	assert.False(t, ok)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "c", entry.Content)
}

func TestRepository_UpdateRollbackDiscardsNewFiles(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Files: []media.Upload{file("old.png", 1)}})
	require.NoError(t, err)

	require.NoError(t, env.db.Exec("DROP TABLE entry_tags").Error)

	_, err = env.repo.Update(ctx, "u1", id, EntryUpdate{
		Title: ptr("changed"),
		Files: []media.Upload{file("new.png", 1)},
		Tags:  entities.ReplaceTags("x"),
	})
	var storageErr *entities.StorageError
	require.ErrorAs(t, err, &storageErr)

	files, err := os.ReadDir(filepath.Join(env.mediaRoot, id))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "old.png")

	var title string
	require.NoError(t, env.db.Raw("SELECT title FROM entries WHERE id = ?", id).Scan(&title).Error)
	assert.Equal(t, "t", title)
}

func TestRepository_Delete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{
		Title: "t", Content: "c", Tags: []string{"Solo"}, Files: []media.Upload{file("a.png", 1)},
	})
	require.NoError(t, err)

	ok, err := env.repo.Delete(ctx, "u2", id)
	require.NoError(t, err)
	assert.False(t, ok, "other owners cannot delete")

	ok, err = env.repo.Delete(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoDirExists(t, filepath.Join(env.mediaRoot, id))

	var mediaRows, links int64
	require.NoError(t, env.db.Model(&entities.Media{}).Where("entry_id = ?", id).Count(&mediaRows).Error)
	require.NoError(t, env.db.Model(&entities.EntryTag{}).Where("entry_id = ?", id).Count(&links).Error)
	assert.Zero(t, mediaRows)
	assert.Zero(t, links)

	all, err := env.tags.AllTags(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []entities.TagCount{{Tag: "Solo", Count: 1}}, all, "tags outlive their entries")

	ok, err = env.repo.Delete(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenDeleteBackend struct {
	storage.Backend
}

func (brokenDeleteBackend) DeleteDir(context.Context, string) error {
	return errors.New("permission denied")
}

func TestRepository_DeleteSucceedsWhenFileRemovalFails(t *testing.T) {
	env := setupWithBackend(t, func(b storage.Backend) storage.Backend { return brokenDeleteBackend{b} })
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c", Files: []media.Upload{file("a.png", 1)}})
	require.NoError(t, err)

	ok, err := env.repo.Delete(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.DirExists(t, filepath.Join(env.mediaRoot, id), "left for the sweep")
}

func TestRepository_ExistingIDs(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	a, err := env.repo.Create(ctx, "u1", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)
	b, err := env.repo.Create(ctx, "u2", NewEntry{Title: "t", Content: "c"})
	require.NoError(t, err)

	got, err := env.repo.ExistingIDs(ctx, []string{a, b, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{a: true, b: true}, got)

	empty, err := env.repo.ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_ScenarioTagVariantsCollapse(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.repo.Create(ctx, "u1", NewEntry{
		Title: "Trip", Content: "Went hiking", Tags: []string{"Nature", "nature", " Nature "},
	})
	require.NoError(t, err)

	entry, err := env.repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nature"}, entry.Tags)

	all, err := env.tags.AllTags(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []entities.TagCount{{Tag: "Nature", Count: 1}}, all)
}
