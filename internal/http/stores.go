package http

import (
	"context"

	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the operations it calls.

// EntryStore provides entry persistence.
type EntryStore interface {
	Create(ctx context.Context, ownerID string, in entries.NewEntry) (string, error)
	Get(ctx context.Context, ownerID, entryID string) (*entities.Entry, error)
	List(ctx context.Context, ownerID string, filter entries.ListFilter) ([]entities.Entry, error)
	Update(ctx context.Context, ownerID, entryID string, in entries.EntryUpdate) (bool, error)
	Delete(ctx context.Context, ownerID, entryID string) (bool, error)
}

// MediaLinker turns stored media into URLs clients can fetch.
type MediaLinker interface {
	Link(ctx context.Context, m entities.Media) (string, error)
}

// TagStore provides read access to the tag vocabulary.
type TagStore interface {
	AllTags(ctx context.Context, ownerID string) ([]entities.TagCount, error)
	LiveUsage(ctx context.Context, ownerID string) ([]entities.TagCount, error)
}

// QuestionSource produces journal prompts.
type QuestionSource interface {
	Question(ctx context.Context) string
}

// Pinger checks the database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
