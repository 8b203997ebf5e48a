// Package session implements database-backed browser sessions with
// read-once flash markers. The session ID travels in a signed cookie;
// handlers receive an explicit *Session and commit their changes
// through the Manager rather than mutating ambient global state.
package session

import (
	"github.com/monikerhq/moniker/internal/domain"
)

// CookieName is the browser cookie carrying the signed session ID.
const CookieName = "moniker_session"

// Session wraps the persisted record with change tracking. Zero or
// unpersisted sessions cost nothing until a handler actually stores
// flash state or logs a user in.
type Session struct {
	data      *domain.Session
	persisted bool
	dirty     bool
	renewed   bool
	destroyed bool
}

func (s *Session) ID() string     { return s.data.ID }
func (s *Session) UserID() string { return s.data.UserID }

// LoggedIn reports whether the session is bound to a user.
func (s *Session) LoggedIn() bool { return s.data.UserID != "" }

// PutFlash stores a read-once marker surviving the next redirect.
func (s *Session) PutFlash(key, value string) {
	s.data.Flash[key] = value
	s.dirty = true
}

// PopFlash reads and clears a single marker.
func (s *Session) PopFlash(key string) (string, bool) {
	v, ok := s.data.Flash[key]
	if ok {
		delete(s.data.Flash, key)
		s.dirty = true
	}
	return v, ok
}

// PopAllFlash reads and clears every marker, for page renders.
func (s *Session) PopAllFlash() map[string]string {
	if len(s.data.Flash) == 0 {
		return nil
	}
	out := s.data.Flash
	s.data.Flash = make(map[string]string)
	s.dirty = true
	return out
}

// Authenticate binds the session to a user. The session ID is rotated
// on commit so a pre-login cookie cannot be fixed onto the account.
func (s *Session) Authenticate(userID string) {
	s.data.UserID = userID
	s.renewed = true
	s.dirty = true
}

// Revoke marks the session for deletion on commit.
func (s *Session) Revoke() {
	s.destroyed = true
}
