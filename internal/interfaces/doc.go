// Package interfaces documents the extension points of the journal service.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - EntryStore: Entry CRUD with tags and media (internal/http/stores.go)
//   - TagStore: Tag vocabulary and live usage (internal/http/stores.go)
//   - Pinger: Database health (internal/http/stores.go)
//   - EntryLookup: Entry existence for the media sweep (internal/media/sweep.go)
//
// ## Media Interfaces
//
//   - Backend: Object storage for uploads (internal/storage/client.go)
//   - MediaLinker: URLs for stored media (internal/http/stores.go)
//   - MediaSweeper: Orphaned media reconciliation (internal/tasks/sweep_media.go)
//
// ## External Services
//
//   - Client: Journal question generation (internal/prompts/client.go)
//   - QuestionSource: Question with fallback (internal/http/stores.go)
//
// # Adding a New Media Backend
//
// To store media somewhere else (e.g., Google Cloud Storage):
//
//  1. Create a provider in internal/storage/providers/gcs/
//
//     type Backend struct {
//         bucket string
//         client *storage.Client
//     }
//
//     func (b *Backend) Upload(ctx context.Context, key string, content io.Reader) (string, error)
//     func (b *Backend) Delete(ctx context.Context, location string) error
//     func (b *Backend) DeleteDir(ctx context.Context, dir string) error
//     func (b *Backend) ListDirs(ctx context.Context) ([]storage.FileInfo, error)
//     func (b *Backend) URL(ctx context.Context, location string) (string, error)
//
//     var _ storage.Backend = (*Backend)(nil)
//
//  2. Add a MediaBackend value in internal/config/config.go
//
//  3. Select it in newBackend in internal/entrypoint/app.go
//
// Upload must never expose a partially written object under its key, and
// ListDirs must report the newest modification time per directory; the sweep
// relies on both.
//
// # Adding a New Question Provider
//
//  1. Implement Client in internal/prompts/
//
//     type OpenAIClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *OpenAIClient) Generate(ctx context.Context) (string, error)
//     func (c *OpenAIClient) Name() string
//
//     var _ Client = (*OpenAIClient)(nil)
//
//  2. Configure in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
