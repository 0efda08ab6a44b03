package configstore

import (
	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

// Prompter asks the operator for a value.
type Prompter interface {
	// Interactive reports whether a human can answer prompts.
	Interactive() bool
	// Prompt shows message and returns the answer, or def when the answer is empty.
	Prompt(message, def string) (string, error)
}

// GetValue resolves a dotted key from cfg.
//
// Resolution order for a missing or empty value:
//   - optional keys return opts.Default (possibly "")
//   - required keys prompt when opts.Prompt is set and p is interactive
//   - required keys fall back to opts.Default when it is set
//   - otherwise a *stack.MissingInputError is returned
func GetValue(cfg *stack.Config, keyPath string, opts stack.LookupOptions, p Prompter) (string, error) {
	if v, ok := stack.Lookup(cfg.Tree(), keyPath); ok {
		return stack.FormatValue(v), nil
	}

	if !opts.Required {
		return opts.Default, nil
	}

	if opts.Prompt != "" && p != nil && p.Interactive() {
		answer, err := p.Prompt(opts.Prompt, opts.Default)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}

	if opts.Default != "" {
		return opts.Default, nil
	}
	return "", &stack.MissingInputError{Key: keyPath}
}
