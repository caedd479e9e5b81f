package urlcodec

import "strings"

// ExtractQuery returns the query portion of location without the leading
// '?'. In hash mode the query is read from the fragment ("/app#?p=home").
func ExtractQuery(location string, useHash bool) string {
	if useHash {
		_, fragment, ok := strings.Cut(location, "#")
		if !ok {
			return ""
		}
		location = fragment
	} else if idx := strings.Index(location, "#"); idx >= 0 {
		location = location[:idx]
	}
	_, query, ok := strings.Cut(location, "?")
	if !ok {
		return ""
	}
	return query
}

// Join appends an encoded query ("?p=..") to base, placing it in the
// fragment when useHash is set.
func Join(base, query string, useHash bool) string {
	query = strings.TrimPrefix(query, "?")
	if idx := strings.IndexAny(base, "?#"); idx >= 0 {
		base = base[:idx]
	}
	if query == "" {
		return base
	}
	if useHash {
		return base + "#?" + query
	}
	return base + "?" + query
}
