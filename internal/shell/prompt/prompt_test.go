package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string, interactive bool) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out, interactive), &out
}

func TestPrompt(t *testing.T) {
	p, out := newTestPrompter("answer\n", true)

	v, err := p.Prompt("Model name", "")
	require.NoError(t, err)
	assert.Equal(t, "answer", v)
	assert.Equal(t, "Model name: ", out.String())
}

func TestPrompt_DefaultOnEmpty(t *testing.T) {
	p, out := newTestPrompter("\n", true)

	v, err := p.Prompt("API secret", "local_api_token")
	require.NoError(t, err)
	assert.Equal(t, "local_api_token", v)
	assert.Equal(t, "API secret [local_api_token]: ", out.String())
}

func TestPrompt_LastLineWithoutNewline(t *testing.T) {
	p, _ := newTestPrompter("value", true)

	v, err := p.Prompt("Q", "")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestPrompt_EOF(t *testing.T) {
	p, _ := newTestPrompter("", true)

	_, err := p.Prompt("Q", "")
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"maybe\n", true, false},
		{"\n", false, false},
		{"\n", true, true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p, _ := newTestPrompter(tt.input, true)
			got, err := p.Confirm("Are you sure?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirm_NonInteractiveUsesDefault(t *testing.T) {
	p, out := newTestPrompter("y\n", false)

	got, err := p.Confirm("Are you sure?", false)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Empty(t, out.String())
}

func TestSelect(t *testing.T) {
	p, out := newTestPrompter("2\n", true)

	idx, err := p.Select("Select a container to stop:", []string{"a (Port: 9000)", "b (Port: 9001)"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "1) a (Port: 9000)\n2) b (Port: 9001)\n")
}

func TestSelect_Invalid(t *testing.T) {
	for _, input := range []string{"0\n", "3\n", "x\n"} {
		p, _ := newTestPrompter(input, true)
		_, err := p.Select("pick", []string{"a", "b"})
		assert.ErrorIs(t, err, ErrInvalidSelection, "input %q", input)
	}
}

func TestSelect_NonInteractive(t *testing.T) {
	p, _ := newTestPrompter("1\n", false)
	_, err := p.Select("pick", []string{"a"})
	assert.ErrorIs(t, err, ErrNotInteractive)
}
