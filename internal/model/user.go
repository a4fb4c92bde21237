package model

import "time"

// User is an authenticated identity. Users hold zero or more roles; their
// effective capability set is the union of the role capability sets plus the
// universal read capability.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Roles []RoleWithCapabilities `json:"roles,omitempty"`
}

// EffectiveCapabilities returns the union of the user's role capabilities plus
// the universal materials:read capability. The result is computed fresh on
// every call; role edits made concurrently by administrators are picked up the
// next time the user is loaded.
func (u *User) EffectiveCapabilities() []Capability {
	seen := map[Capability]struct{}{
		CapabilityMaterialsRead: {},
	}
	caps := []Capability{CapabilityMaterialsRead}

	if u == nil {
		return caps
	}
	for _, role := range u.Roles {
		for _, c := range role.Capabilities {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			caps = append(caps, c)
		}
	}
	return caps
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the payload for changing the account password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// GrantRoleRequest is the payload for assigning a role to a user.
type GrantRoleRequest struct {
	RoleID int `json:"role_id" binding:"required"`
}

// HasRole reports whether the user holds a role with the given name.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
