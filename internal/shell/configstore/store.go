// Package configstore persists the stack configuration document (liquid.yaml).
package configstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/moby/sys/atomicwriter"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

// DefaultPath is the configuration file in the working directory.
const DefaultPath = "liquid.yaml"

// fileMode keeps the secrets in the document private to the owner.
const fileMode = 0o600

// Load reads the document at path, creating a default one when it is absent.
//
// Empty jwt/auth secrets are generated and the document is saved again;
// secrets that are already present are never replaced.
func Load(path string) (*stack.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return CreateDefault(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := stack.Parse(data)
	if err != nil {
		var parseErr *stack.ConfigParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}

	if cfg.BackfillSecrets() {
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// CreateDefault writes a fresh default document with generated secrets.
func CreateDefault(path string) (*stack.Config, error) {
	cfg := stack.DefaultConfig()
	cfg.BackfillSecrets()
	if err := Save(&cfg, path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save atomically replaces the document at path.
func Save(cfg *stack.Config, path string) error {
	data, err := stack.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := atomicwriter.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a document is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
