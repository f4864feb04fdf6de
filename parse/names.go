package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Formats the name of a stop as printed on timetables,
// e.g. POISY_COLLÈGE becomes "Poisy collège".
func FormatName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}
