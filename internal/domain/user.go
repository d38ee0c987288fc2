package domain

import "time"

// User represents a registered account in the system.
// Owns zero or more notes. Accounts are deactivated (soft) in the normal
// flow; hard deletion cascades to all owned notes and their share grants.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Stored hashed, never serialized in API responses
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsActive returns true if the user can log in and use the system.
func (u *User) IsActive() bool {
	return u.Active && u.DeletedAt == nil
}

// Touch updates the UpdatedAt timestamp to the current time.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}

// Deactivate marks the account inactive without removing any data.
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
}
