package stack

import (
	"fmt"
	"sort"
	"strconv"
)

// =============================================================================
// Environment Materialization
// =============================================================================

// Environment keys consumed by the compose project.
const (
	EnvJWTSecret        = "JWT_SECRET"
	EnvAPISecret        = "API_SECRET"
	EnvAuthSecret       = "AUTH_SECRET"
	EnvStackVersion     = "STACK_VERSION"
	EnvModelImage       = "MODEL_IMAGE"
	EnvModelName        = "MODEL_NAME"
	EnvPostgresDB       = "POSTGRES_DB"
	EnvPostgresUser     = "POSTGRES_USER"
	EnvPostgresPassword = "POSTGRES_PASSWORD"
	EnvPostgresPort     = "POSTGRES_PORT"
	EnvPostgresSchema   = "POSTGRES_SCHEMA"
	EnvDatabaseURL      = "DATABASE_URL"
)

// EnvKeys lists the materialized keys in the order they are written.
var EnvKeys = []string{
	EnvJWTSecret,
	EnvAPISecret,
	EnvAuthSecret,
	EnvStackVersion,
	EnvModelImage,
	EnvModelName,
	EnvPostgresDB,
	EnvPostgresUser,
	EnvPostgresPassword,
	EnvPostgresPort,
	EnvPostgresSchema,
	EnvDatabaseURL,
}

// EnvironmentSet is the flat key/value set handed to docker compose.
type EnvironmentSet map[string]string

// Materialize flattens a Config into the compose environment.
// The result is a new map; it shares nothing with cfg.
func Materialize(cfg *Config) EnvironmentSet {
	return EnvironmentSet{
		EnvJWTSecret:        cfg.Stack.JWTSecret,
		EnvAPISecret:        cfg.Stack.APISecret,
		EnvAuthSecret:       cfg.Stack.AuthSecret,
		EnvStackVersion:     cfg.Stack.Version,
		EnvModelImage:       cfg.Stack.ModelImage,
		EnvModelName:        cfg.Stack.ModelName,
		EnvPostgresDB:       cfg.Database.Name,
		EnvPostgresUser:     cfg.Database.User,
		EnvPostgresPassword: cfg.Database.Password,
		EnvPostgresPort:     strconv.Itoa(cfg.Database.Port),
		EnvPostgresSchema:   cfg.Database.Schema,
		EnvDatabaseURL:      DatabaseURL(cfg.Database, DatabaseHost),
	}
}

// DatabaseURL builds a postgresql:// connection URL for the given host.
// Values are inserted verbatim.
//
// Example:
//
//	DatabaseURL(DatabaseSection{Name: "db", User: "u", Password: "p", Port: 5432}, "pg")
//	// Returns: "postgresql://u:p@pg:5432/db"
func DatabaseURL(db DatabaseSection, host string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", db.User, db.Password, host, db.Port, db.Name)
}

// Lines renders the set as KEY=VALUE lines. Known keys come first in EnvKeys
// order, any extra keys follow sorted by name.
func (e EnvironmentSet) Lines() []string {
	lines := make([]string, 0, len(e))
	known := make(map[string]bool, len(EnvKeys))
	for _, k := range EnvKeys {
		known[k] = true
		if v, ok := e[k]; ok {
			lines = append(lines, k+"="+v)
		}
	}

	var extra []string
	for k := range e {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		lines = append(lines, k+"="+e[k])
	}
	return lines
}

// Missing returns the known keys that are absent or empty, in EnvKeys order.
func (e EnvironmentSet) Missing() []string {
	var missing []string
	for _, k := range EnvKeys {
		if e[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
