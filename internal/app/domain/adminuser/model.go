// Package adminuser defines back-office accounts and their sessions.
package adminuser

import "time"

// Role grants back-office capabilities. Role checks are enforced server-side
// on every request; anything the client caches is a display hint only.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Admin is a back-office account.
type Admin struct {
	ID           string    `json:"_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session tracks an issued token by hash so logout invalidates it server-side.
type Session struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"adminId"`
	TokenHash  string    `json:"-"`
	ExpiresAt  time.Time `json:"expiresAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time `json:"createdAt"`
}
