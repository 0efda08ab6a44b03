package stack

import (
	"fmt"
	"strings"
)

// =============================================================================
// Dotted Key Lookup
// =============================================================================

// LookupOptions controls how a missing value is resolved by the config store.
type LookupOptions struct {
	Prompt   string // text shown when asking the user; empty disables prompting
	Default  string // fallback value
	Required bool
}

// Lookup walks a nested map along a dot-separated key path.
// It returns false when any segment is missing, when an intermediate value is
// not a map, or when the final value is nil.
//
// Example:
//
//	Lookup(cfg.Tree(), "database.port") // 5432, true
//	Lookup(cfg.Tree(), "database.nope") // nil, false
func Lookup(tree map[string]any, keyPath string) (any, bool) {
	if keyPath == "" {
		return nil, false
	}

	var current any = tree
	for _, key := range strings.Split(keyPath, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// FormatValue renders a looked-up value as a string.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
