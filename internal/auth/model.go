package auth

import "time"

// User is the account entity. PreferredName is what staff-facing
// screens display when set.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PreferredName string    `json:"preferred_name,omitempty"`
	Password      string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
