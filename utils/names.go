package utils

import (
	"strings"
)

var nameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"\x00", "",
	"\n", " ",
	"\r", " ",
)

// SafeName makes an indicator display name usable as a file name and table name.
// Path separators become underscores, surrounding whitespace and dots are trimmed.
func SafeName(name string) string {
	cleaned := strings.TrimSpace(nameReplacer.Replace(name))
	cleaned = strings.Trim(cleaned, ".")
	return cleaned
}

// ParseList splits a comma separated list, trimming blanks and dropping empty items.
func ParseList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}
