package auth

import "fmt"

// Role is the closed set of account roles. The string values match
// roles.role_name in the database.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleUser   Role = "user"
)

// ParseRole accepts only the three known role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleUser:
		return true
	}
	return false
}

// CanExamine reports whether the role may record doctor exams.
func (r Role) CanExamine() bool {
	switch r {
	case RoleAdmin, RoleDoctor:
		return true
	case RoleUser:
		return false
	}
	return false
}

// IsAdmin reports whether the role may manage camps and users.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleDoctor, RoleUser:
		return false
	}
	return false
}
