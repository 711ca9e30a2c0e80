package content

import "strings"

// SplitLines splits content on "\n" and "\r\n". A lone "\r" is kept as content.
// A trailing line terminator does not produce a trailing empty line, so a file
// "a\nb\n" has two lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	parts := strings.Split(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
