package user

import "github.com/fieldops/sopdesk/pkg/serrors"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func NewRole(v string) (Role, error) {
	role := Role(v)
	if !role.IsValid() {
		return "", serrors.Validation("INVALID_ROLE", "role must be admin or user")
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}
