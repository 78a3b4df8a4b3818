package models

import "time"

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Bio          *string   `json:"bio" db:"bio"`
	AvatarURL    *string   `json:"avatar_url" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AuthenticatedUser is the caller identity resolved from a bearer token.
type AuthenticatedUser struct {
	ID   int64
	Role string
}

func (u AuthenticatedUser) IsHost() bool {
	return u.Role == RoleHost
}

func (u AuthenticatedUser) IsGuest() bool {
	return u.Role == RoleGuest
}

// Session is returned by register and login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
