package entity

import "time"

// Session maps a provider-issued opaque token to a user, with a 7-day
// absolute expiry.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
