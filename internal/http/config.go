package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Entries EntryStore
	Tags    TagStore
	Media   MediaLinker
	Health  Pinger

	// Prompt generation
	Questions QuestionSource

	// OwnerID is attached to every request while there is no authentication
	OwnerID string

	// Local media serving; empty MediaDir disables the static route
	MediaDir       string
	MediaURLPrefix string

	// Application info
	Version string
}
