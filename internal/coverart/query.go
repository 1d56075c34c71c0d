package coverart

import "strings"

// NormalizeQuery strips the kind's locale prefixes from a raw title and trims
// whitespace, producing the search string handed to resolvers. Prefixes are
// stripped repeatedly until none match, so the result is a fixed point:
// normalizing an already-normalized title is a no-op.
func NormalizeQuery(kind Kind, title string) string {
	normalized := strings.TrimSpace(title)
	for {
		stripped := false
		for _, prefix := range localePrefixes[kind] {
			if len(normalized) >= len(prefix) && strings.EqualFold(normalized[:len(prefix)], prefix) {
				normalized = strings.TrimSpace(normalized[len(prefix):])
				stripped = true
				break
			}
		}
		if !stripped {
			return normalized
		}
	}
}

// upgradeScheme rewrites plain HTTP URLs to HTTPS. All candidate URLs pass
// through this before being cached or returned.
func upgradeScheme(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// slugify reduces a title to a lowercase hyphen-separated token usable as a
// deterministic seed in synthetic fallback URLs.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 'а' && r <= 'я', r == 'ё':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
