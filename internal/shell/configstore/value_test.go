package configstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

type scriptedPrompter struct {
	interactive bool
	answer      string
	err         error
	asked       []string
}

func (p *scriptedPrompter) Interactive() bool { return p.interactive }

func (p *scriptedPrompter) Prompt(message, def string) (string, error) {
	p.asked = append(p.asked, message)
	if p.err != nil {
		return "", p.err
	}
	if p.answer == "" {
		return def, nil
	}
	return p.answer, nil
}

func valueConfig() *stack.Config {
	cfg := stack.DefaultConfig()
	cfg.Stack.JWTSecret = "jwt"
	cfg.Stack.AuthSecret = "auth"
	return &cfg
}

func TestGetValue_Present(t *testing.T) {
	cfg := valueConfig()

	v, err := GetValue(cfg, "stack.model_name", stack.LookupOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "lfm-7b-e", v)

	port, err := GetValue(cfg, "database.port", stack.LookupOptions{Required: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "5432", port)
}

func TestGetValue_OptionalMissing(t *testing.T) {
	cfg := valueConfig()
	p := &scriptedPrompter{interactive: true, answer: "typed"}

	v, err := GetValue(cfg, "stack.nope", stack.LookupOptions{Prompt: "Value?"}, p)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = GetValue(cfg, "stack.nope", stack.LookupOptions{Default: "fallback"}, p)
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
	assert.Empty(t, p.asked, "optional keys never prompt")
}

func TestGetValue_RequiredPrompts(t *testing.T) {
	cfg := valueConfig()
	cfg.Stack.APISecret = ""
	p := &scriptedPrompter{interactive: true, answer: "typed"}

	v, err := GetValue(cfg, "stack.api_secret", stack.LookupOptions{Prompt: "API secret", Required: true}, p)
	require.NoError(t, err)
	assert.Equal(t, "typed", v)
	assert.Equal(t, []string{"API secret"}, p.asked)
}

func TestGetValue_RequiredNonInteractiveUsesDefault(t *testing.T) {
	cfg := valueConfig()
	cfg.Stack.APISecret = ""
	p := &scriptedPrompter{interactive: false}

	v, err := GetValue(cfg, "stack.api_secret", stack.LookupOptions{Prompt: "API secret", Default: "local_api_token", Required: true}, p)
	require.NoError(t, err)
	assert.Equal(t, "local_api_token", v)
	assert.Empty(t, p.asked)
}

func TestGetValue_RequiredUnresolvable(t *testing.T) {
	cfg := valueConfig()
	cfg.Stack.ModelName = ""

	_, err := GetValue(cfg, "stack.model_name", stack.LookupOptions{Required: true}, &scriptedPrompter{interactive: false})
	require.Error(t, err)
	assert.ErrorIs(t, err, stack.ErrMissingRequiredInput)

	var missing *stack.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "stack.model_name", missing.Key)
}

func TestGetValue_PromptError(t *testing.T) {
	cfg := valueConfig()
	cfg.Stack.ModelName = ""
	boom := errors.New("stdin closed")

	_, err := GetValue(cfg, "stack.model_name", stack.LookupOptions{Prompt: "Model", Required: true}, &scriptedPrompter{interactive: true, err: boom})
	assert.ErrorIs(t, err, boom)
}
