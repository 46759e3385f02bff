package textutil

import "strings"

// Optional returns nil for a missing or blank value and a trimmed copy otherwise.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

// Deref returns the pointed-to value or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

