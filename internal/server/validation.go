package server

import (
	"strings"
	"unicode"
)

// SanitizeFilename removes NUL and other control characters from a client
// supplied filename. Everything else is kept as sent; multipart decoding has
// already reduced the name to its base element.
func SanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)
}
