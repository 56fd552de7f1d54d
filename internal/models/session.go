package models

import "time"

// Session is a server-tracked login. SessionToken equals the serialized
// bearer token, which lets a session row be deleted to force logout before
// the token itself expires.
type Session struct {
	SessionToken string
	UserID       string
	Expires      time.Time
}

// Live reports whether the session is still valid at t.
func (s *Session) Live(t time.Time) bool {
	return s.Expires.After(t)
}
