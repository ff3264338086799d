package domain

import "strings"

// Slugify derives a URL-safe slug from a human-readable name: lowercase
// letters and digits are kept, every other run of characters becomes a single
// hyphen, and leading/trailing hyphens are trimmed. Deterministic for a given
// input.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
