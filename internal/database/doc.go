// Package database provides the data access layer for the journal.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and schema bootstrap
//	├── schema/          # Versioned migrations (goose)
//	├── entries/         # Entry CRUD, media and tag consistency
//	└── tags/            # Tag vocabulary and entry associations
//
// # Using Sub-packages
//
//	// Initialize database connection, applying pending migrations
//	db, err := database.NewDatabase("./journal.db")
//
//	// Create domain-specific repositories
//	entriesRepo := entries.NewRepository(db.DB, media.NewStore(backend))
//	tagsRepo := tags.NewRepository(db.DB)
//
//	// Use repositories
//	entry, err := entriesRepo.Get(ctx, ownerID, entryID)
//	usage, err := tagsRepo.LiveUsage(ctx, ownerID)
//
// # Interface Implementations
//
//   - entries.Repository: implements http.EntryStore and media.EntryLookup
//   - tags.Repository: implements http.TagStore
//   - Database: implements http.Pinger
//
// # Transactions
//
// entries.Repository runs each operation in a single gorm transaction and
// binds the tags repository to it with tags.Repository.WithTx, so tag counts
// never drift from the entry_tags rows.
package database
