package packs

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a name into a stable filesystem- and URL-friendly identifier.
// Identical input always produces the identical slug, which is what makes
// pack and item ids reproducible across runs.
func Slug(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = slugPattern.ReplaceAllString(v, "-")
	v = strings.Trim(v, "-")
	if v == "" {
		return "item"
	}
	return v
}
