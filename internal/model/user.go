// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account. PasswordHash is tagged json:"-" so
// it never appears in a response.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Email        string    `json:"email"       db:"email"`
	PasswordHash string    `json:"-"           db:"password_hash"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	AvatarURL    *string   `json:"avatarURL"   db:"avatar_url"` // nil when the user registered without one
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
}
