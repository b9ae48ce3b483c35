package httpmetrics

import (
	"regexp"
	"strings"
)

var uuidRegex = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// NormalizePath collapses per-entity path segments so metric label
// cardinality stays bounded: message IDs become {id}, usernames under
// /api/users/ become {username}.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	normalized := uuidRegex.ReplaceAllString(path, "{id}")

	parts := strings.Split(normalized, "/")
	for i, part := range parts {
		if i > 0 && parts[i-1] == "users" && part != "" {
			parts[i] = "{username}"
		}
		if part != "" && isNumeric(part) {
			parts[i] = "{param}"
		}
	}

	result := strings.Join(parts, "/")
	if result == "" {
		return "/"
	}

	return result
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
