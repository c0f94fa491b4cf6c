package user

import (
	"strings"
	"time"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/auth"
)

// User is the admin listing view. The password hash never leaves the repository.
type User struct {
	ID       int64   `json:"user_id"`
	Username string  `json:"username"`
	Mobile   string  `json:"mobile"`
	RoleID   int     `json:"role_id"`
	Email    *string `json:"email"`
}

type RoleRow struct {
	ID   int       `json:"role_id"`
	Name auth.Role `json:"role_name"`
}

// Credentials is what login needs from storage.
type Credentials struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	Role         auth.Role
}

// NewUser is the create body.
type NewUser struct {
	Username string  `json:"username"`
	Mobile   string  `json:"mobile"`
	Password string  `json:"password"`
	RoleID   int     `json:"role_id"`
	Email    *string `json:"email"`
}

// Profile is the user block returned with a token.
type Profile struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
	Email    *string   `json:"email"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

func (n *NewUser) validate() error {
	n.Username = strings.TrimSpace(n.Username)
	n.Mobile = strings.TrimSpace(n.Mobile)
	if n.Email != nil {
		if e := strings.TrimSpace(*n.Email); e == "" {
			n.Email = nil
		} else {
			n.Email = &e
		}
	}
	checks := map[string]bool{
		"username": n.Username != "",
		"mobile":   n.Mobile != "",
		"password": n.Password != "",
		"role_id":  n.RoleID > 0,
	}
	if verr := apperr.NewValidation("Missing required fields", checks,
		[]string{"username", "mobile", "password", "role_id"}); verr != nil {
		return verr
	}
	return nil
}
