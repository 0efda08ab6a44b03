package stack

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Document Types
// =============================================================================

// Config is the persisted stack configuration (liquid.yaml).
//
// All fields are values, so copying a Config never shares nested state.
type Config struct {
	Stack    StackSection    `yaml:"stack"`
	Database DatabaseSection `yaml:"database"`
}

// StackSection holds versions, image tags and secrets for the stack.
type StackSection struct {
	Version    string `yaml:"version" validate:"required"`
	ModelImage string `yaml:"model_image" validate:"required,image_ref"`
	JWTSecret  string `yaml:"jwt_secret" validate:"required"`
	APISecret  string `yaml:"api_secret" validate:"required"`
	AuthSecret string `yaml:"auth_secret" validate:"required"`
	ModelName  string `yaml:"model_name"` // derived from ModelImage at launch
}

// DatabaseSection holds the Postgres settings shared by the stack services.
type DatabaseSection struct {
	Name     string `yaml:"name" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Schema   string `yaml:"schema" validate:"required"`
}

// Section names that every document must carry.
const (
	SectionStack    = "stack"
	SectionDatabase = "database"
)

// =============================================================================
// Codec
// =============================================================================

// Parse decodes a YAML document into a Config.
// The document must be a mapping containing both the stack and database sections.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewConfigParseError("", "invalid YAML syntax", fmt.Errorf("%w: %v", ErrInvalidDocument, err))
	}
	if raw == nil {
		return nil, NewConfigParseError("", "document is empty", ErrInvalidDocument)
	}

	for _, section := range []string{SectionStack, SectionDatabase} {
		value, ok := raw[section]
		if !ok || value == nil {
			return nil, NewConfigParseError("", fmt.Sprintf("missing %q section", section), ErrMissingSection)
		}
		if _, isMap := value.(map[string]any); !isMap {
			return nil, NewConfigParseError("", fmt.Sprintf("%q section must be a mapping", section), ErrInvalidDocument)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigParseError("", "invalid field type", fmt.Errorf("%w: %v", ErrInvalidDocument, err))
	}
	return &cfg, nil
}

// Marshal encodes a Config as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Tree returns the document as nested maps keyed by YAML field name.
// Empty strings are reported as nil so lookups treat them as unset.
func (c *Config) Tree() map[string]any {
	return map[string]any{
		SectionStack: map[string]any{
			"version":     nilIfEmpty(c.Stack.Version),
			"model_image": nilIfEmpty(c.Stack.ModelImage),
			"jwt_secret":  nilIfEmpty(c.Stack.JWTSecret),
			"api_secret":  nilIfEmpty(c.Stack.APISecret),
			"auth_secret": nilIfEmpty(c.Stack.AuthSecret),
			"model_name":  nilIfEmpty(c.Stack.ModelName),
		},
		SectionDatabase: map[string]any{
			"name":     nilIfEmpty(c.Database.Name),
			"user":     nilIfEmpty(c.Database.User),
			"password": nilIfEmpty(c.Database.Password),
			"port":     nilIfZero(c.Database.Port),
			"schema":   nilIfEmpty(c.Database.Schema),
		},
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
