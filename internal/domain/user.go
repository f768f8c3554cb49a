package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a registered team member. Users are only ever created through
// invite redemption.
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"` // stored lowercased
	PasswordHash string    `gorm:"column:password;not null" json:"-"` // Never expose this via JSON
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public strips everything that must not leave the server.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// PublicUser is the projection of a User that is safe to hand to clients.
// It doubles as the authenticated identity carried through a request.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (p PublicUser) IsAdmin() bool {
	return p.Role == RoleAdmin
}
