package configstore

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	"github.com/Liquid4All/on-prem-stack/internal/shell/envfile"
)

// ErrConfigExists is returned when migrating would overwrite a document.
var ErrConfigExists = errors.New("configuration file already exists")

// BackupSuffix is appended to the env file once it has been migrated.
const BackupSuffix = ".bak"

// Migrate imports a legacy .env into a new document at cfgPath and renames
// the env file to <envPath>.bak. Keys missing from the env file keep their
// defaults; missing secrets are generated.
func Migrate(envPath, cfgPath string) (*stack.Config, error) {
	exists, err := Exists(cfgPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", cfgPath, ErrConfigExists)
	}

	env, err := envfile.Read(envPath)
	if err != nil {
		return nil, err
	}

	cfg, err := FromEnvironment(env)
	if err != nil {
		return nil, err
	}
	cfg.BackfillSecrets()

	if err := Save(cfg, cfgPath); err != nil {
		return nil, err
	}
	if err := os.Rename(envPath, envPath+BackupSuffix); err != nil {
		// Undo the save so the migration can be retried.
		if rmErr := os.Remove(cfgPath); rmErr != nil {
			return nil, fmt.Errorf("backup %s: %w (and %s was left behind: %v)", envPath, err, cfgPath, rmErr)
		}
		return nil, fmt.Errorf("backup %s: %w", envPath, err)
	}
	return cfg, nil
}

// FromEnvironment builds a document from materialized keys over the defaults.
// DATABASE_URL is ignored; it is always derived from the database section.
func FromEnvironment(env stack.EnvironmentSet) (*stack.Config, error) {
	cfg := stack.DefaultConfig()

	set := func(dst *string, key string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(&cfg.Stack.JWTSecret, stack.EnvJWTSecret)
	set(&cfg.Stack.APISecret, stack.EnvAPISecret)
	set(&cfg.Stack.AuthSecret, stack.EnvAuthSecret)
	set(&cfg.Stack.Version, stack.EnvStackVersion)
	set(&cfg.Stack.ModelImage, stack.EnvModelImage)
	set(&cfg.Stack.ModelName, stack.EnvModelName)
	set(&cfg.Database.Name, stack.EnvPostgresDB)
	set(&cfg.Database.User, stack.EnvPostgresUser)
	set(&cfg.Database.Password, stack.EnvPostgresPassword)
	set(&cfg.Database.Schema, stack.EnvPostgresSchema)

	if v := env[stack.EnvPostgresPort]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, stack.NewConfigParseError("", fmt.Sprintf("%s is not a number: %q", stack.EnvPostgresPort, v), stack.ErrInvalidDocument)
		}
		cfg.Database.Port = port
	}

	// An image from the env file without a model name gets one derived
	if env[stack.EnvModelName] == "" && env[stack.EnvModelImage] != "" {
		cfg.RefreshModelName()
	}
	return &cfg, nil
}
