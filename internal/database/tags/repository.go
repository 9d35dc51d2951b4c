// Package tags maintains the per-owner tag vocabulary and the entry/tag
// association table.
//
// Tag identifiers are "{owner}_{lowercase text}", so the same word in any
// casing maps to one row per owner. The count column is incremented each time
// a tag is applied to an entry and is never decremented: it is an upper bound
// on live usage, and AllTags orders by it. LiveUsage reports the exact number
// of entries currently carrying each tag.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	err := db.Transaction(func(tx *gorm.DB) error {
//		return repo.WithTx(tx).ReplaceEntryTags(ctx, owner, entryID, entities.ReplaceTags("Nature"))
//	})
package tags

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/journal/internal/entities"
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository whose statements run inside tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// TagID returns the identifier of tag for owner.
func TagID(ownerID, tag string) string {
	return ownerID + "_" + strings.ToLower(tag)
}

// ReplaceEntryTags overwrites the tag set of an entry. A Keep update does
// nothing. Otherwise every association of the entry is removed and one is
// inserted per distinct tag; blank tags are dropped. When two tags in the
// same call differ only in casing, the later one is used.
func (r *Repository) ReplaceEntryTags(ctx context.Context, ownerID, entryID string, update entities.TagUpdate) error {
	if update.Keep() {
		return nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("entry_id = ?", entryID).Delete(&entities.EntryTag{}).Error; err != nil {
		return entities.NewStorageError("clear entry tags", err)
	}

	for _, tag := range normalize(ownerID, update.Tags()) {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + 1")}),
		}).Create(&tag).Error
		if err != nil {
			return entities.NewStorageError("upsert tag", err)
		}

		link := entities.EntryTag{EntryID: entryID, TagID: tag.ID}
		if err := db.Create(&link).Error; err != nil {
			return entities.NewStorageError("link tag", err)
		}
	}
	return nil
}

// normalize trims tags, drops blanks and collapses case variants. Output order
// follows the first occurrence of each tag; the text is the last occurrence's.
func normalize(ownerID string, raw []string) []entities.Tag {
	var (
		order []string
		byID  = make(map[string]string)
	)
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		id := TagID(ownerID, t)
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = t
	}

	out := make([]entities.Tag, 0, len(order))
	for _, id := range order {
		out = append(out, entities.Tag{ID: id, UserID: ownerID, Name: byID[id], Count: 1})
	}
	return out
}

// TagsFor returns the display text of every tag on an entry, in no
// particular order.
func (r *Repository) TagsFor(ctx context.Context, entryID string) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Table("tags").
		Joins("JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Where("entry_tags.entry_id = ?", entryID).
		Pluck("tags.tag", &names).Error
	if err != nil {
		return nil, entities.NewStorageError("load entry tags", err)
	}
	return names, nil
}

// TagsForEntries loads the tags of several entries in one query.
func (r *Repository) TagsForEntries(ctx context.Context, entryIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		EntryID string
		Tag     string
	}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("entry_tags.entry_id AS entry_id, tags.tag AS tag").
		Joins("JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Where("entry_tags.entry_id IN ?", entryIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, entities.NewStorageError("load entry tags", err)
	}

	for _, row := range rows {
		out[row.EntryID] = append(out[row.EntryID], row.Tag)
	}
	return out, nil
}

// AllTags returns the owner's tags ordered by usage count, highest first.
func (r *Repository) AllTags(ctx context.Context, ownerID string) ([]entities.TagCount, error) {
	counts := []entities.TagCount{}
	err := r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Select("tag, count").
		Where("user_id = ?", ownerID).
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, entities.NewStorageError("list tags", err)
	}
	return counts, nil
}

// LiveUsage returns, for each of the owner's tags, the number of entries that
// carry it right now. Tags no entry uses are reported with zero.
func (r *Repository) LiveUsage(ctx context.Context, ownerID string) ([]entities.TagCount, error) {
	counts := []entities.TagCount{}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.tag AS tag, COUNT(entry_tags.entry_id) AS count").
		Joins("LEFT JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Where("tags.user_id = ?", ownerID).
		Group("tags.id").
		Order("COUNT(entry_tags.entry_id) DESC, tags.tag ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, entities.NewStorageError("count tag usage", err)
	}
	return counts, nil
}

// ClearAssociations removes every association of an entry. Tag rows are kept.
func (r *Repository) ClearAssociations(ctx context.Context, entryID string) error {
	err := r.db.WithContext(ctx).Where("entry_id = ?", entryID).Delete(&entities.EntryTag{}).Error
	if err != nil {
		return entities.NewStorageError("clear entry tags", err)
	}
	return nil
}
