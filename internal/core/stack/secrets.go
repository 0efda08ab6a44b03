package stack

import (
	"crypto/rand"
)

// =============================================================================
// Secret Generation
// =============================================================================

// SecretLength is the length of generated jwt/auth secrets.
const SecretLength = 64

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiasedByte is the largest multiple of len(secretAlphabet) that fits in a byte.
// Bytes at or above it are rejected so every character is equally likely.
const maxUnbiasedByte = 256 - (256 % len(secretAlphabet))

// GenerateSecret returns a random string of the given length drawn from
// ASCII letters and digits using crypto/rand.
func GenerateSecret(length int) string {
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		// crypto/rand.Read never returns an error on supported platforms.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, secretAlphabet[int(b)%len(secretAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}

// BackfillSecrets generates any missing jwt/auth secret.
// Existing non-empty secrets are never replaced. It reports whether a secret was generated.
func (c *Config) BackfillSecrets() bool {
	generated := false
	if c.Stack.JWTSecret == "" {
		c.Stack.JWTSecret = GenerateSecret(SecretLength)
		generated = true
	}
	if c.Stack.AuthSecret == "" {
		c.Stack.AuthSecret = GenerateSecret(SecretLength)
		generated = true
	}
	return generated
}
