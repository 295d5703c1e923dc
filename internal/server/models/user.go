// Package models defines the records persisted by the server.
package models

import "time"

// User is an account. Token hashes and the password hash never leave the
// server: they are excluded from JSON.
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Verified     bool   `json:"userVerified"`

	EmailVerificationToken  *string    `json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`
	PasswordResetToken      *string    `json:"-"`
	PasswordResetExpiry     *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
