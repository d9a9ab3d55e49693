// Package strings holds helpers for env-sourced string lists.
package strings

import "strings"

// DedupeAndTrim trims each element and drops empties and repeats,
// preserving first-seen order. Env lists arrive with stray whitespace
// and copy-pasted duplicates; broker and seed lists must not.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
