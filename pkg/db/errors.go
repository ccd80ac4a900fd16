package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. A constraintName match is checked first; the generic
// duplicate-key texts cover drivers that do not name the constraint, such as
// sqlite's "UNIQUE constraint failed: shops.slug".
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
