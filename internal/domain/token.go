package domain

import "time"

// Token is a single-use login credential. A user owns at most one
// current token; issuing a new one replaces the previous row.
type Token struct {
	ID        string
	UserID    string
	Value     string
	CreatedAt time.Time
}
