package domain

import (
	"slices"
	"strings"
	"time"
)

// User is an account that can authenticate and own tasks.
// Users are managed outside the task API; this service only reads them,
// except for the bootstrap tool in cmd/usertool.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a User with an already-hashed password.
func NewUser(username, hashedPassword string, roles []string) (*User, error) {
	user := &User{
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		Roles:          roles,
		CreatedAt:      time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the fields required to store a user.
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username", "must not be empty", nil)
	}
	if len(u.Username) > 50 {
		return NewValidationError("username", "must be at most 50 characters", nil)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "hash must not be empty", nil)
	}
	for _, r := range u.Roles {
		if strings.TrimSpace(r) == "" {
			return NewValidationError("roles", "must not contain blank names", nil)
		}
	}
	return nil
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Principal is the authenticated identity attached to a single request:
// the token subject and the role names it carried.
type Principal struct {
	Username string
	Roles    []string
}
