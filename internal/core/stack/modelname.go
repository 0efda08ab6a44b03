package stack

import "regexp"

// =============================================================================
// Model Name Derivation
// =============================================================================

// modelImagePattern matches liquidai/<family>-<name>[:tag].
// Group 1 is <name>: everything after the first hyphen up to the tag separator.
var modelImagePattern = regexp.MustCompile(`liquidai/[^-]+-([^:]+)`)

// ModelNamePrefix is prepended to the extracted name to form the served model name.
const ModelNamePrefix = "lfm-"

// ExtractModelName returns the model token of a liquidai image tag.
// The second return value is false when the tag does not follow the
// liquidai/<family>-<name>[:tag] shape.
//
// Examples:
//
//	ExtractModelName("liquidai/lfm-7b-e:0.0.1") // "7b-e", true
//	ExtractModelName("unrelated/image:tag")     // "", false
func ExtractModelName(imageTag string) (string, bool) {
	matches := modelImagePattern.FindStringSubmatch(imageTag)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// DeriveModelName returns the served model name for an image tag, e.g.
// "lfm-7b-e" for "liquidai/lfm-7b-e:0.0.1".
func DeriveModelName(imageTag string) (string, bool) {
	name, ok := ExtractModelName(imageTag)
	if !ok {
		return "", false
	}
	return ModelNamePrefix + name, true
}

// RefreshModelName re-derives Stack.ModelName from Stack.ModelImage.
// When the image does not match, the existing name is kept and false is returned.
func (c *Config) RefreshModelName() bool {
	name, ok := DeriveModelName(c.Stack.ModelImage)
	if !ok {
		return false
	}
	c.Stack.ModelName = name
	return true
}
