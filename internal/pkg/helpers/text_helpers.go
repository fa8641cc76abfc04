package helpers

import "strings"

// NormalizeTags trims entries, drops empty ones and removes case-insensitive
// duplicates while keeping the first spelling and the input order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TrimmedOrNil trims s and returns nil for nil or blank input
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// NonNil returns s, or an empty slice when s is nil
func NonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
