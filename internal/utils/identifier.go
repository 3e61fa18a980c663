package utils

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)
)

// IsEmail reports whether a login identifier looks like an email address.
// Anything that doesn't match is treated as a username.
func IsEmail(identifier string) bool {
	return emailPattern.MatchString(identifier)
}

// NormalizeUsername case-folds a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername reports whether a normalized username matches the allowed
// format: 3-20 lowercase alphanumerics and underscores.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
