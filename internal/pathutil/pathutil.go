package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

func ExpandHomePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return filepath.Clean(p)
		}
		if p == "~" {
			return filepath.Clean(home)
		}
		return filepath.Clean(filepath.Join(home, strings.TrimPrefix(p, "~/")))
	}
	return filepath.Clean(p)
}

// ResolveForRead maps a relative, non-existing path to ./inputs/<path> when
// that file exists there. Absolute and existing paths pass through unchanged.
func ResolveForRead(p string) string {
	p = ExpandHomePath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	candidate := filepath.Join("inputs", p)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return p
}

// ResolveForWrite places relative paths under ./outputs and creates parent
// directories. Absolute paths are respected (parents still created).
func ResolveForWrite(p string) (string, error) {
	p = ExpandHomePath(p)
	if p == "" {
		return "", os.ErrInvalid
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join("outputs", p)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// SafeName reduces an identifier to [a-z0-9_] so it can be used as a file
// name component. Curve keys may contain '/' and ':'.
func SafeName(input string) string {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
