package client

import (
	"regexp"
	"strings"
)

var unsafeFileNameChars = regexp.MustCompile(`[^0-9a-zA-Z\s.]`)

// NormalizeFileName replaces every character other than ASCII letters,
// digits, whitespace and dots with a space and lowercases the result.
func NormalizeFileName(title string) string {
	return strings.ToLower(unsafeFileNameChars.ReplaceAllString(title, " "))
}
