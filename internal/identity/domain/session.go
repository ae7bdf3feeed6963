package domain

import "time"

// Session is the server-side half of a login. The cookie carries a signed
// token whose ID references this row, so logout can revoke it immediately.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
