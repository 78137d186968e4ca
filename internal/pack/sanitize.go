package pack

import "strings"

// Sanitize replaces every character that is illegal in a file name on
// common platforms with '-'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '-'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '-'
		}
		return r
	}, s)
}

// ArchiveName returns "<name>.<version>.<ext>" with both name and version
// sanitised.
func ArchiveName(name, version, ext string) string {
	return Sanitize(name) + "." + Sanitize(version) + "." + strings.TrimPrefix(ext, ".")
}
