package domain

import "time"

// User is a login account. Guest profiles are separate records, created
// lazily on a user's first reservation and keyed by the same email.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)
