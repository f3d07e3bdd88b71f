package model

import "errors"

// Profile is the per-user record kept in the hosted key-value store at
// users/{id}/profile. One profile per user identifier.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PublicProfile is the view exposed to other users through search.
// The email stays private.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public strips the private fields from a profile.
func (p Profile) Public() PublicProfile {
	return PublicProfile{ID: p.ID, Username: p.Username}
}

// ErrUserNotFound is returned when a username or identifier cannot be resolved
var ErrUserNotFound = errors.New("user not found")
