// Package envfile reads and writes the .env file consumed by docker compose.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/moby/sys/atomicwriter"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

// DefaultPath is the env file compose reads from the working directory.
const DefaultPath = ".env"

// fileMode keeps the secrets in the file private to the owner.
const fileMode = 0o600

// Write replaces path with one KEY=VALUE line per entry.
// Values are written verbatim; they are not quoted or escaped.
func Write(path string, env stack.EnvironmentSet) error {
	var b strings.Builder
	for _, line := range env.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := atomicwriter.WriteFile(path, []byte(b.String()), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read parses an env file.
func Read(path string) (stack.EnvironmentSet, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return stack.EnvironmentSet(values), nil
}

// Exists reports whether path is present.
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

// Remove deletes path. It reports false, without error, when the file is absent.
func Remove(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("remove %s: %w", path, err)
}
