package driver

import "strings"

// ValidationError aggregates configuration and transcript validation failures.
type ValidationError struct {
	Source string
	Issues []string
}

func (e *ValidationError) Error() string {
	prefix := e.Source
	if prefix == "" {
		prefix = "srpn"
	}
	if len(e.Issues) == 0 {
		return prefix + ": invalid configuration"
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// SanitizeName normalises a suite or transcript name for use as a key and a
// path segment.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
