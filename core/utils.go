package core

import "strings"

// CleanString trims surrounding whitespace from s. Pass lower=true to also
// lowercase it, as done for emails before comparing or storing them.
func CleanString(s string, lower ...bool) string {
	cleaned := strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		cleaned = strings.ToLower(cleaned)
	}
	return cleaned
}
