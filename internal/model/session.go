package model

import "time"

// Session is the authenticated context keyed by the upstream bearer token.
// ExpiresAt is zero when the token carries no usable expiry claim.
type Session struct {
	Token         string    `json:"-"`
	UserID        uint      `json:"user_id,omitempty"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	EstablishedAt time.Time `json:"established_at"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
