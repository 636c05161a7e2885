package model

import "strings"

// UserID identifies a stored user. Zero means not yet persisted.
type UserID int64

// User is an account that can log in to the player pages.
// Login is unique across all users.
type User struct {
	ID       UserID `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"` // bcrypt hash when written by the accounts service
}

// IsNew reports whether the user still needs an ID from the backend
func (u User) IsNew() bool {
	return u.ID == 0
}

// Validate checks the attribute constraints enforced before persisting
func (u User) Validate() error {
	if u.ID < 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(u.Login) == "" {
		return ErrEmptyLogin
	}
	return nil
}
