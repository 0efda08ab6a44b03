package configstore

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

var alnum64 = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)

func configPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), DefaultPath)
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_CreatesDefault(t *testing.T) {
	path := configPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, stack.DefaultStackVersion, cfg.Stack.Version)
	assert.Equal(t, stack.DefaultModelImage, cfg.Stack.ModelImage)
	assert.Equal(t, "lfm-7b-e", cfg.Stack.ModelName)
	assert.Regexp(t, alnum64, cfg.Stack.JWTSecret)
	assert.Regexp(t, alnum64, cfg.Stack.AuthSecret)
	assert.NotEqual(t, cfg.Stack.JWTSecret, cfg.Stack.AuthSecret)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_SecretsStableAcrossLoads(t *testing.T) {
	path := configPath(t)

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, first.Stack.JWTSecret, second.Stack.JWTSecret)
	assert.Equal(t, first.Stack.AuthSecret, second.Stack.AuthSecret)
}

func TestLoad_BackfillsOnlyMissingSecrets(t *testing.T) {
	path := configPath(t)
	doc := `stack:
  version: c3d7dbacd1
  model_image: liquidai/lfm-7b-e:0.0.1
  jwt_secret: keepme
  api_secret: local_api_token
  model_name: lfm-7b-e
database:
  name: liquid_labs
  user: local_user
  password: local_password
  port: 5432
  schema: labs
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "keepme", cfg.Stack.JWTSecret)
	assert.Regexp(t, alnum64, cfg.Stack.AuthSecret)

	// The generated secret was persisted
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Stack.AuthSecret, again.Stack.AuthSecret)
}

func TestLoad_DoesNotRewriteCompleteDocument(t *testing.T) {
	path := configPath(t)
	_, err := Load(path)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)
	// Comments survive only if the file is never rewritten
	require.NoError(t, os.WriteFile(path, append([]byte("# operator note\n"), before...), 0o600))

	_, err = Load(path)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(after), "# operator note")
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", "stack: [unclosed", stack.ErrInvalidDocument},
		{"missing database", "stack:\n  version: x\n", stack.ErrMissingSection},
		{"missing stack", "database:\n  port: 5432\n", stack.ErrMissingSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := configPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var parseErr *stack.ConfigParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, path, parseErr.Path)
		})
	}
}

// =============================================================================
// Save Tests
// =============================================================================

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := configPath(t)
	cfg := stack.DefaultConfig()
	cfg.Stack.JWTSecret = stack.GenerateSecret(stack.SecretLength)
	cfg.Stack.AuthSecret = stack.GenerateSecret(stack.SecretLength)
	cfg.Stack.ModelImage = "liquidai/lfm-3b-e:0.0.6"
	cfg.Stack.ModelName = "lfm-3b-e"
	cfg.Database.Port = 15432

	require.NoError(t, Save(&cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestSave_ReplacesExisting(t *testing.T) {
	path := configPath(t)
	cfg := stack.DefaultConfig()
	require.NoError(t, Save(&cfg, path))

	cfg.Database.Schema = "other"
	require.NoError(t, Save(&cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "schema: other")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSave_MissingDirectory(t *testing.T) {
	cfg := stack.DefaultConfig()
	err := Save(&cfg, filepath.Join(t.TempDir(), "missing", DefaultPath))
	assert.Error(t, err)
}

func savedConfig(t *testing.T) stack.Config {
	t.Helper()
	cfg := stack.DefaultConfig()
	cfg.Stack.JWTSecret = stack.GenerateSecret(64)
	cfg.Stack.AuthSecret = stack.GenerateSecret(64)
	return cfg
}

// A failed Save must leave the previous document in place and loadable.
func TestSave_FailureKeepsPreviousDocument(t *testing.T) {
	// The name fits the filesystem limit but the temporary file next to it does not.
	path := filepath.Join(t.TempDir(), "liquid-"+strings.Repeat("x", 238)+".yaml")

	first := savedConfig(t)
	data, err := stack.Marshal(&first)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	second := first
	second.Database.Schema = "other"
	require.Error(t, Save(&second, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, first, *loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSave_ReadOnlyDirectoryKeepsPreviousDocument(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	path := configPath(t)
	dir := filepath.Dir(path)

	first := savedConfig(t)
	require.NoError(t, Save(&first, path))

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	second := first
	second.Database.Port = 15432
	require.Error(t, Save(&second, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, first, *loaded)
}

func TestDefaultConfig_CopiesDoNotAlias(t *testing.T) {
	path := configPath(t)
	a, err := CreateDefault(path)
	require.NoError(t, err)

	a.Database.Name = "mutated"
	b := stack.DefaultConfig()
	assert.Equal(t, stack.DefaultDatabaseName, b.Database.Name)
}
