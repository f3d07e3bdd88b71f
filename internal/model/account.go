package model

import (
	"errors"
	"time"
)

// Account is a credential record held by the identity provider. It is
// separate from Profile: accounts live in Postgres and carry the password
// hash, profiles live in the key-value store and are what the app reads.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the body for POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	// ErrUsernameTaken is returned when registering a name that already maps to a user
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailExists is returned when registering an email that already has an account
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound is returned when no account exists for an email
	ErrAccountNotFound = errors.New("account not found")
)
