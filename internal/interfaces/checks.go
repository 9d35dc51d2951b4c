package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/database/tags"
	"github.com/mrlokans/journal/internal/http"
	"github.com/mrlokans/journal/internal/media"
	"github.com/mrlokans/journal/internal/prompts"
	"github.com/mrlokans/journal/internal/storage"
	"github.com/mrlokans/journal/internal/storage/providers/local"
	"github.com/mrlokans/journal/internal/storage/providers/s3"
	"github.com/mrlokans/journal/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// EntryStore implementations
var _ http.EntryStore = (*entries.Repository)(nil)

// TagStore implementations
var _ http.TagStore = (*tags.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Media
// =============================================================================

// Backend implementations
var _ storage.Backend = (*local.Backend)(nil)
var _ storage.Backend = (*s3.Backend)(nil)

// MediaLinker implementations
var _ http.MediaLinker = (*media.Store)(nil)

// EntryLookup implementations
var _ media.EntryLookup = (*entries.Repository)(nil)

// MediaSweeper implementations
var _ tasks.MediaSweeper = (*media.Sweeper)(nil)

// =============================================================================
// Prompts
// =============================================================================

// Client implementations
var _ prompts.Client = (*prompts.AnthropicClient)(nil)

// QuestionSource implementations
var _ http.QuestionSource = (*prompts.Service)(nil)
