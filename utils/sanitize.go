package utils

import "github.com/microcosm-cc/bluemonday"

// Event titles and links are rendered as plain text; strip all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans user-supplied text to prevent XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
