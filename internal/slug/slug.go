package slug

import (
	"fmt"
	"strings"
)

// Make lowers a display name into a url-safe identifier: spaces become
// dashes, anything outside [a-z0-9-] is dropped.
func Make(name string) string {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// Unique appends a numeric suffix until taken stops reporting collisions.
func Unique(name string, taken func(string) bool) string {
	base := Make(name)
	s := base
	counter := 1
	for taken(s) {
		s = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
	return s
}
