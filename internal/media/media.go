// Package media validates uploaded attachments and stores them on a
// storage.Backend, one directory per entry.
//
// Stored objects are named "{entryID}/{mediaID}_{filename}". The database
// transaction of the caller does not cover them: Save returns a Batch the
// caller discards if its transaction rolls back, and files left behind by a
// crash are collected by the Sweeper.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/storage"
	"github.com/mrlokans/journal/internal/utils"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize int64 = 10 << 20

const (
	reasonNoFile   = "no file selected"
	reasonFileType = "file type not allowed"
	reasonTooLarge = "file too large, maximum size is 10MB"
)

var allowedExtensions = map[string]entities.MediaType{
	"jpg":  entities.MediaTypeImage,
	"jpeg": entities.MediaTypeImage,
	"png":  entities.MediaTypeImage,
	"gif":  entities.MediaTypeImage,
	"mp4":  entities.MediaTypeVideo,
	"mov":  entities.MediaTypeVideo,
	"avi":  entities.MediaTypeVideo,
	"mp3":  entities.MediaTypeAudio,
	"wav":  entities.MediaTypeAudio,
	"m4a":  entities.MediaTypeAudio,
}

// Upload is one file sent with a create or update request. The size is
// measured from Content, never taken from the client.
type Upload struct {
	Filename string
	Content  io.ReadSeeker
}

// Validate checks the filename, extension and size of an upload.
func Validate(u Upload) error {
	if u.Filename == "" || u.Content == nil {
		return entities.NewValidationError("media", reasonNoFile)
	}
	if _, ok := Classify(u.Filename); !ok {
		return entities.NewValidationError("media", fmt.Sprintf("%s: %s", reasonFileType, u.Filename))
	}
	size, err := measure(u.Content)
	if err != nil {
		return entities.NewStorageError("read upload", err)
	}
	if size > MaxFileSize {
		return entities.NewValidationError("media", fmt.Sprintf("%s: %s", reasonTooLarge, u.Filename))
	}
	return nil
}

// Classify maps a filename to its media type by extension, case-insensitive.
// The second result is false when the extension is not recognised.
func Classify(filename string) (entities.MediaType, bool) {
	t, ok := allowedExtensions[utils.Extension(filename)]
	return t, ok
}

// measure returns the length of r and rewinds it.
func measure(r io.ReadSeeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// Store writes and removes entry media on a backend.
type Store struct {
	backend storage.Backend
	newID   func() string
}

func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend, newID: uuid.NewString}
}

// Batch is the set of files written by one Save call.
type Batch struct {
	store   *Store
	records []entities.Media
}

// Records returns the media rows to insert for the batch.
func (b *Batch) Records() []entities.Media {
	if b == nil {
		return nil
	}
	return b.records
}

// Discard removes every file of the batch. It is used when the transaction
// that should have recorded the files rolls back.
func (b *Batch) Discard(ctx context.Context) error {
	if b == nil {
		return nil
	}
	var errs []error
	for _, rec := range b.records {
		if err := b.store.backend.Delete(ctx, rec.Filepath); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", rec.Filepath, err))
		}
	}
	return errors.Join(errs...)
}

// Save stores the uploads of an entry. Uploads without a filename are
// skipped. All uploads are validated before anything is written, so a
// rejected file leaves no new files behind; if a write fails the files
// already written by this call are removed.
func (s *Store) Save(ctx context.Context, entryID string, uploads []Upload) (*Batch, error) {
	if entryID == "" {
		return nil, errors.New("entry id is required")
	}

	pending := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if u.Filename == "" {
			continue
		}
		if err := Validate(u); err != nil {
			return nil, err
		}
		pending = append(pending, u)
	}

	batch := &Batch{store: s, records: make([]entities.Media, 0, len(pending))}
	for _, u := range pending {
		rec, err := s.write(ctx, entryID, u)
		if err != nil {
			if discardErr := batch.Discard(context.WithoutCancel(ctx)); discardErr != nil {
				log.WithError(discardErr).WithField("entry_id", entryID).Warn("Failed to remove partially saved media")
			}
			return nil, entities.NewStorageError("save media", err)
		}
		batch.records = append(batch.records, rec)
	}
	return batch, nil
}

func (s *Store) write(ctx context.Context, entryID string, u Upload) (entities.Media, error) {
	size, err := measure(u.Content)
	if err != nil {
		return entities.Media{}, err
	}

	id := s.newID()
	key := entryID + "/" + id + "_" + utils.SanitizeFilename(u.Filename)
	location, err := s.backend.Upload(ctx, key, u.Content)
	if err != nil {
		return entities.Media{}, err
	}

	fileType, _ := Classify(u.Filename)
	return entities.Media{
		ID:       id,
		EntryID:  entryID,
		Filename: u.Filename,
		Filepath: location,
		FileType: fileType,
		FileSize: size,
	}, nil
}

// DeleteAll removes every stored file of an entry. A missing directory is
// not an error.
func (s *Store) DeleteAll(ctx context.Context, entryID string) error {
	if entryID == "" {
		return errors.New("entry id is required")
	}
	if err := s.backend.DeleteDir(ctx, entryID); err != nil {
		return entities.NewStorageError("delete media", err)
	}
	return nil
}

// Link returns the URL a client can fetch m from.
func (s *Store) Link(ctx context.Context, m entities.Media) (string, error) {
	return s.backend.URL(ctx, m.Filepath)
}
