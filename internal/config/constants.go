package config

const (
	// DefaultDatabasePath is the default path for the journal database
	DefaultDatabasePath = "./journal.db"

	// DefaultMediaPath is the default root directory for uploaded media
	DefaultMediaPath = "./media"

	// DefaultMediaURLPrefix is the path local media is served under
	DefaultMediaURLPrefix = "/media"

	// DefaultOwnerID owns every entry while there is no authentication
	DefaultOwnerID = "demo_user"

	DefaultPromptModel  = "claude-3-5-sonnet-20241022"
	DefaultPromptAPIURL = "https://api.anthropic.com/v1/messages"
)
