package config

// DirectoryConfig contains identity directory configuration. The directory
// is the backend user API the verification poller and auth-state refresh
// query for the live identity record.
type DirectoryConfig struct {
	// BaseURL is the user API root, e.g. "https://id.fixwave.dev/api".
	// Empty falls back to an in-process static directory (dev mode only).
	BaseURL string `env:"BASE_URL" envDefault:""`

	// APIKey is sent as a bearer token when set.
	APIKey string `env:"API_KEY" envDefault:""`

	// Claim paths are JMESPath expressions into the user document.
	// Empty fields use the stock document shape.
	UserIDPath     string `env:"USER_ID_PATH"     envDefault:""`
	FirstNamePath  string `env:"FIRST_NAME_PATH"  envDefault:""`
	LastNamePath   string `env:"LAST_NAME_PATH"   envDefault:""`
	EmailPath      string `env:"EMAIL_PATH"       envDefault:""`
	GroupsPath     string `env:"GROUPS_PATH"      envDefault:""`
	VerifiedAtPath string `env:"VERIFIED_AT_PATH" envDefault:""`
}
