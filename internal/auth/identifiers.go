package auth

import (
	"fmt"
	"strings"
)

// Prefix constants for Casbin identifiers
const (
	PrefixUser = "user:"
	PrefixRole = "role:"
)

// UserID creates a Casbin user identifier with the standard prefix
// Example: UserID("0192...") → "user:0192..."
func UserID(id string) string {
	return PrefixUser + id
}

// RoleID creates a Casbin role identifier with the standard prefix
// Example: RoleID("admin") → "role:admin"
func RoleID(name string) string {
	return PrefixRole + name
}

// ExtractRoleID extracts the role name from a Casbin principal identifier
// Returns the name without prefix, or error if prefix mismatch
func ExtractRoleID(principal string) (string, error) {
	if !strings.HasPrefix(principal, PrefixRole) {
		return "", fmt.Errorf("invalid role principal: %s (expected prefix %s)", principal, PrefixRole)
	}
	return strings.TrimPrefix(principal, PrefixRole), nil
}
