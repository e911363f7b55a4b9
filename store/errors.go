package store

import "strings"

// IsUniqueViolation reports whether err is a unique-index violation.
// PocketBase surfaces these either as the raw SQLite constraint error
// or as a field validation error, depending on where the index is
// enforced.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "must be unique")
}
