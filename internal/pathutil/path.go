// Package pathutil provides path normalization for slash-separated archive paths.
package pathutil

import "strings"

// Normalize converts an archive entry name to canonical slash-separated form.
// Backslash separators (seen in archives produced on Windows) are collapsed
// to forward slashes so entry names compare consistently.
func Normalize(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}
