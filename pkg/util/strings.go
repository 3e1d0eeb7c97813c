package util

import "strings"

// Prefix returns at most n bytes of s. Used for short previews in trace logs.
func Prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SafeFileName replaces every character that is not allowed in a single
// path element on common filesystems with '_'. Empty input stays empty.
// The result never equals "." or "..".
func SafeFileName(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x20, r == 0x7f:
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "." || out == ".." {
		return strings.Repeat("_", len(out))
	}
	return out
}
