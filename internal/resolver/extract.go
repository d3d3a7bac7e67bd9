package resolver

import (
	"net/url"
	"strings"
)

// Page names that can end a path without being a restaurant identifier.
var wellKnownPages = map[string]bool{
	"":           true,
	"menu":       true,
	"index.html": true,
	"index.htm":  true,
	"app":        true,
	"home":       true,
	"qr":         true,
}

// ExtractRestaurantID pulls the restaurant identifier out of a scanned QR
// payload or request URL. Priority: ?r= query param, then ?restaurant=,
// then the URL fragment, then the last meaningful path segment, then the
// default identifier.
func ExtractRestaurantID(raw, defaultID string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultID
	}

	u, err := url.Parse(raw)
	if err != nil {
		return defaultID
	}

	query := u.Query()
	if id := strings.TrimSpace(query.Get("r")); id != "" {
		return id
	}
	if id := strings.TrimSpace(query.Get("restaurant")); id != "" {
		return id
	}

	if fragment := strings.Trim(u.Fragment, "/ "); fragment != "" {
		return fragment
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if !wellKnownPages[strings.ToLower(segments[i])] {
			return segments[i]
		}
	}

	return defaultID
}
