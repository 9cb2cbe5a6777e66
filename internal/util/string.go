package util

import "strings"

// NormalizeName canonicalizes a performer name for comparison:
// trim, collapse whitespace runs to a single space, lowercase.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Slugify converts a display name to a filename-safe slug.
func Slugify(name string) string {
	name = NormalizeName(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, ".", "")
	name = strings.ReplaceAll(name, "!", "")
	name = strings.ReplaceAll(name, "/", "-")
	return name
}

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
