package service

import "strings"

// NormalizeEmail trims and lowercases an email address so lookups and the
// unique index agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
