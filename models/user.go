package models

import "time"

// User represents a user of the application. Password accounts carry an
// email and password hash; OAuth accounts carry a provider and the
// provider's user ID instead.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        *string    `json:"email,omitempty"` // Use pointer for nullable fields
	PasswordHash *string    `json:"-"`
	Provider     *string    `json:"provider,omitempty"`
	ProviderID   *string    `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}
