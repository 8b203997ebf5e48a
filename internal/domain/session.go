package domain

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the persisted half of a browser session. UserID is empty
// for anonymous visitors. Flash holds read-once markers surviving a
// single redirect (link.sent, token.expired, ...).
type Session struct {
	ID        string
	UserID    string
	Flash     map[string]string
	CreatedAt time.Time
	ExpiresAt time.Time
}
