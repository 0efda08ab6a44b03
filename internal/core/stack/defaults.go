package stack

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultStackVersion is the stack release launched when none is configured,
	// and the target of --upgrade-stack.
	DefaultStackVersion = "c3d7dbacd1"
	// DefaultModelImage is the model image launched when none is configured,
	// and the target of --upgrade-model.
	DefaultModelImage = "liquidai/lfm-7b-e:0.0.1"
	// DefaultAPISecret is the bearer token accepted by the local API.
	DefaultAPISecret = "local_api_token"

	DefaultDatabaseName     = "liquid_labs"
	DefaultDatabaseUser     = "local_user"
	DefaultDatabasePassword = "local_password"
	DefaultDatabasePort     = 5432
	DefaultDatabaseSchema   = "labs"

	// DatabaseHost is the compose service name of the Postgres container.
	DatabaseHost = "liquid-labs-postgres"
)

// DefaultConfig returns a new default document without secrets.
// Each call builds a fresh value; callers may mutate the result freely.
func DefaultConfig() Config {
	cfg := Config{
		Stack: StackSection{
			Version:    DefaultStackVersion,
			ModelImage: DefaultModelImage,
			APISecret:  DefaultAPISecret,
		},
		Database: DatabaseSection{
			Name:     DefaultDatabaseName,
			User:     DefaultDatabaseUser,
			Password: DefaultDatabasePassword,
			Port:     DefaultDatabasePort,
			Schema:   DefaultDatabaseSchema,
		},
	}
	if name, ok := DeriveModelName(cfg.Stack.ModelImage); ok {
		cfg.Stack.ModelName = name
	}
	return cfg
}

// ApplyUpgrades resets the stack version and/or model image to the current
// defaults. It reports whether anything changed.
func (c *Config) ApplyUpgrades(upgradeStack, upgradeModel bool) bool {
	changed := false
	if upgradeStack && c.Stack.Version != DefaultStackVersion {
		c.Stack.Version = DefaultStackVersion
		changed = true
	}
	if upgradeModel && c.Stack.ModelImage != DefaultModelImage {
		c.Stack.ModelImage = DefaultModelImage
		changed = true
	}
	return changed
}
