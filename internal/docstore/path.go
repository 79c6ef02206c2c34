package docstore

import (
	"fmt"
	"strings"
)

// Join builds a store path from segments. Empty segments are skipped so
// Join("sessions", "") == "sessions".
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// Split returns the segments of p. The root path "" has no segments.
func Split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// ValidateSegment reports whether s can be used as a single path segment.
// Segments must be non-empty and may not contain '/', '.', '#', '$', '[', ']'
// or ASCII control characters.
func ValidateSegment(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
			return fmt.Errorf("%w: control character in %q", ErrInvalidPath, s)
		case strings.ContainsRune("/.#$[]", r):
			return fmt.Errorf("%w: %q contains %q", ErrInvalidPath, s, r)
		}
	}
	return nil
}

// cleanPath validates every segment of p and returns its canonical form.
func cleanPath(p string) (string, []string, error) {
	segs := Split(p)
	for _, s := range segs {
		if err := ValidateSegment(s); err != nil {
			return "", nil, err
		}
	}
	return strings.Join(segs, "/"), segs, nil
}

// isAncestor reports whether a is a strict ancestor of b. The root is an
// ancestor of every non-root path.
func isAncestor(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" {
		return true
	}
	return strings.HasPrefix(b, a+"/")
}
