// Package entries stores journal entries and keeps their tags and media
// consistent with the entry lifecycle.
//
// Every operation runs in one database transaction. Media files are written
// inside the transaction callback and removed again if it rolls back; files of
// deleted entries are removed after commit. Anything left behind by a crash is
// collected by media.Sweeper.
//
// # Usage
//
//	repo := entries.NewRepository(db, media.NewStore(backend))
//	id, err := repo.Create(ctx, owner, entries.NewEntry{Title: "Trip", Content: "Went hiking"})
package entries

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/database/tags"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/media"
)

// existingIDsChunk stays well below SQLite's bound parameter limit.
const existingIDsChunk = 500

// NewEntry is the input of Create. EntryDate defaults to the creation time.
type NewEntry struct {
	Title     string
	Content   string
	Tags      []string
	EntryDate string
	Files     []media.Upload
}

// ListFilter narrows List. Empty fields do not filter. Dates are compared as
// stored strings, both bounds inclusive.
type ListFilter struct {
	Tag       string
	StartDate string
	EndDate   string
}

// EntryUpdate is the input of Update. Nil fields are left untouched, Files are
// appended to the existing media.
type EntryUpdate struct {
	Title     *string
	Content   *string
	EntryDate *string
	Tags      entities.TagUpdate
	Files     []media.Upload
}

// Repository handles all entry database operations.
type Repository struct {
	db    *gorm.DB
	tags  *tags.Repository
	media *media.Store
	now   func() entities.Timestamp
	newID func() string
}

// NewRepository creates a new entries repository.
func NewRepository(db *gorm.DB, store *media.Store) *Repository {
	return &Repository{
		db:    db,
		tags:  tags.NewRepository(db),
		media: store,
		now:   entities.Now,
		newID: uuid.NewString,
	}
}

// Create stores a new entry with its media and tags and returns its id.
func (r *Repository) Create(ctx context.Context, ownerID string, in NewEntry) (string, error) {
	if err := requireText("title", in.Title); err != nil {
		return "", err
	}
	if err := requireText("content", in.Content); err != nil {
		return "", err
	}

	now := r.now()
	entry := entities.Entry{
		ID:        r.newID(),
		UserID:    ownerID,
		Title:     in.Title,
		Content:   in.Content,
		EntryDate: in.EntryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if entry.EntryDate == "" {
		entry.EntryDate = now.String()
	}

	var batch *media.Batch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return entities.NewStorageError("create entry", err)
		}

		var err error
		batch, err = r.media.Save(ctx, entry.ID, in.Files)
		if err != nil {
			return err
		}
		if err := insertMedia(tx, batch.Records()); err != nil {
			return err
		}

		if len(in.Tags) == 0 {
			return nil
		}
		return r.tags.WithTx(tx).ReplaceEntryTags(ctx, ownerID, entry.ID, entities.ReplaceTags(in.Tags...))
	})
	if err != nil {
		if batch != nil {
			r.removeMedia(ctx, entry.ID)
		}
		return "", entities.AsStorageError("create entry", err)
	}

	log.WithFields(log.Fields{"entry_id": entry.ID, "media": len(batch.Records())}).Debug("Entry created")
	return entry.ID, nil
}

// Get returns the entry with its tags and media, or nil when no entry with
// that id belongs to the owner.
func (r *Repository) Get(ctx context.Context, ownerID, entryID string) (*entities.Entry, error) {
	var found []entities.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", entryID, ownerID).Limit(1).Find(&found).Error; err != nil {
			return entities.NewStorageError("get entry", err)
		}
		return r.hydrate(ctx, tx, found)
	})
	if err != nil {
		return nil, entities.AsStorageError("get entry", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// List returns the owner's entries, newest entry date first.
func (r *Repository) List(ctx context.Context, ownerID string, filter ListFilter) ([]entities.Entry, error) {
	list := []entities.Entry{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&entities.Entry{}).Where("entries.user_id = ?", ownerID)
		if filter.Tag != "" {
			q = q.Select("DISTINCT entries.*").
				Joins("JOIN entry_tags ON entry_tags.entry_id = entries.id").
				Joins("JOIN tags ON tags.id = entry_tags.tag_id").
				Where("tags.user_id = ? AND tags.tag = ?", ownerID, filter.Tag)
		}
		if filter.StartDate != "" {
			q = q.Where("entries.entry_date >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			q = q.Where("entries.entry_date <= ?", filter.EndDate)
		}

		if err := q.Order("entries.entry_date DESC").Find(&list).Error; err != nil {
			return entities.NewStorageError("list entries", err)
		}
		return r.hydrate(ctx, tx, list)
	})
	if err != nil {
		return nil, entities.AsStorageError("list entries", err)
	}
	return list, nil
}

// Update applies the supplied fields to an entry. It reports false when no
// entry with that id belongs to the owner. updated_at is refreshed only when
// a scalar field is supplied; new files are appended to the entry's media
// and the tag set is replaced unless the tag update is Keep.
func (r *Repository) Update(ctx context.Context, ownerID, entryID string, in EntryUpdate) (bool, error) {
	var (
		found bool
		batch *media.Batch
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = exists(tx, ownerID, entryID)
		if err != nil || !found {
			return err
		}

		changes, err := scalarChanges(in)
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			changes["updated_at"] = r.now()
			err := tx.Model(&entities.Entry{}).
				Where("id = ? AND user_id = ?", entryID, ownerID).
				Updates(changes).Error
			if err != nil {
				return entities.NewStorageError("update entry", err)
			}
		}

		batch, err = r.media.Save(ctx, entryID, in.Files)
		if err != nil {
			return err
		}
		if err := insertMedia(tx, batch.Records()); err != nil {
			return err
		}

		return r.tags.WithTx(tx).ReplaceEntryTags(ctx, ownerID, entryID, in.Tags)
	})
	if err != nil {
		if discardErr := batch.Discard(context.WithoutCancel(ctx)); discardErr != nil {
			log.WithError(discardErr).WithField("entry_id", entryID).Warn("Failed to remove media of rolled back update")
		}
		return false, entities.AsStorageError("update entry", err)
	}
	return found, nil
}

// Delete removes an entry, its media and its tag associations. Tag rows are
// kept. Media files are removed after the rows are committed; a failure to
// remove them is logged and left to media.Sweeper.
func (r *Repository) Delete(ctx context.Context, ownerID, entryID string) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = exists(tx, ownerID, entryID)
		if err != nil || !found {
			return err
		}

		if err := tx.Where("entry_id = ?", entryID).Delete(&entities.Media{}).Error; err != nil {
			return entities.NewStorageError("delete media rows", err)
		}
		if err := r.tags.WithTx(tx).ClearAssociations(ctx, entryID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", entryID, ownerID).Delete(&entities.Entry{}).Error; err != nil {
			return entities.NewStorageError("delete entry", err)
		}
		return nil
	})
	if err != nil {
		return false, entities.AsStorageError("delete entry", err)
	}
	if !found {
		return false, nil
	}

	r.removeMedia(ctx, entryID)
	return true, nil
}

// ExistingIDs reports which of ids belong to a stored entry, for any owner.
func (r *Repository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for start := 0; start < len(ids); start += existingIDsChunk {
		end := min(start+existingIDsChunk, len(ids))

		var found []string
		err := r.db.WithContext(ctx).
			Model(&entities.Entry{}).
			Where("id IN ?", ids[start:end]).
			Pluck("id", &found).Error
		if err != nil {
			return nil, entities.NewStorageError("look up entries", err)
		}
		for _, id := range found {
			out[id] = true
		}
	}
	return out, nil
}

// hydrate attaches tags and media to entries in two queries.
func (r *Repository) hydrate(ctx context.Context, tx *gorm.DB, list []entities.Entry) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}

	tagsByEntry, err := r.tags.WithTx(tx).TagsForEntries(ctx, ids)
	if err != nil {
		return err
	}

	var rows []entities.Media
	if err := tx.Where("entry_id IN ?", ids).Order("rowid ASC").Find(&rows).Error; err != nil {
		return entities.NewStorageError("load media", err)
	}
	mediaByEntry := make(map[string][]entities.Media, len(list))
	for _, m := range rows {
		m.FileType = entities.MediaTypeOrDefault(m.FileType)
		mediaByEntry[m.EntryID] = append(mediaByEntry[m.EntryID], m)
	}

	for i := range list {
		list[i].Tags = tagsByEntry[list[i].ID]
		if list[i].Tags == nil {
			list[i].Tags = []string{}
		}
		list[i].Media = mediaByEntry[list[i].ID]
		if list[i].Media == nil {
			list[i].Media = []entities.Media{}
		}
	}
	return nil
}

// removeMedia deletes the media directory of an entry, logging failures.
func (r *Repository) removeMedia(ctx context.Context, entryID string) {
	if err := r.media.DeleteAll(context.WithoutCancel(ctx), entryID); err != nil {
		log.WithError(err).WithField("entry_id", entryID).Warn("Failed to remove entry media, leaving it to the sweep")
	}
}

func insertMedia(tx *gorm.DB, records []entities.Media) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]entities.Media, len(records))
	for i, rec := range records {
		rec.FileType = entities.MediaTypeOrDefault(rec.FileType)
		rows[i] = rec
	}
	if err := tx.Create(&rows).Error; err != nil {
		return entities.NewStorageError("insert media", err)
	}
	return nil
}

func exists(tx *gorm.DB, ownerID, entryID string) (bool, error) {
	var count int64
	err := tx.Model(&entities.Entry{}).
		Where("id = ? AND user_id = ?", entryID, ownerID).
		Count(&count).Error
	if err != nil {
		return false, entities.NewStorageError("look up entry", err)
	}
	return count > 0, nil
}

func scalarChanges(in EntryUpdate) (map[string]any, error) {
	changes := map[string]any{}
	if in.Title != nil {
		if err := requireText("title", *in.Title); err != nil {
			return nil, err
		}
		changes["title"] = *in.Title
	}
	if in.Content != nil {
		if err := requireText("content", *in.Content); err != nil {
			return nil, err
		}
		changes["content"] = *in.Content
	}
	if in.EntryDate != nil {
		if err := requireText("entry_date", *in.EntryDate); err != nil {
			return nil, err
		}
		changes["entry_date"] = *in.EntryDate
	}
	return changes, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return entities.NewValidationError(field, "must not be empty")
	}
	return nil
}
