package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("email does not match a known account")
	ErrTokenInvalid = errors.New("token is invalid or expired")
)

type User struct {
	ID          string
	Email       string
	Moniker     string
	ActivatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Activated reports whether the account finished the activation flow.
func (u *User) Activated() bool {
	return u.ActivatedAt != nil
}
