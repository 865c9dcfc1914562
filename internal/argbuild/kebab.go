package argbuild

import "strings"

// Kebab converts a lowerCamelCase config enum value (e.g. "workspaceWrite")
// into the child's kebab-case flag value ("workspace-write"), per spec.md
// §4.3: "Enum-valued sandbox/approval values are kebab-cased at the
// boundary." Already-lowercase values pass through unchanged.
func Kebab(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
