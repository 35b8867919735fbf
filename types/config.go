package types

// AppConfig is the unified application configuration, populated from the
// config file, environment variables, and command-line flags.
type AppConfig struct {
	// Config is the path of the config file in use, when set by flag.
	Config string `mapstructure:"config"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Claim    ClaimConfig    `mapstructure:"claim"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:" for an ephemeral
	// store. Defaults to ~/.waymark/waymark.db.
	Path string `mapstructure:"path" validate:"required"`
}

// ClaimConfig controls how claim operations identify the acting agent.
type ClaimConfig struct {
	// Actor is the default actor name recorded on claimed steps when the
	// caller does not pass one explicitly.
	Actor string `mapstructure:"actor"`
}
