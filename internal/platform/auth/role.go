package auth

import (
	"strings"

	"github.com/homa/homa/internal/platform/apperr"
)

// Role is the single role a user account holds.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole accepts a role value in any case and rejects unknown roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return r, nil
	default:
		return "", apperr.Validation("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
