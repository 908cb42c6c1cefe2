package entity

import "time"

// Session represents a server-side login session.
// The session ID travels in the signed cookie; everything else stays on the server.
type Session struct {
	ID            string    // Random session identifier (UUID)
	UserID        uint      // Authenticated user ID
	UserName      string    // User name at login time
	Administrator bool      // Administrator flag at login time
	CreatedAt     time.Time // Session creation time
	ExpiresAt     time.Time // Session expiration time
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// State converts the session into the principal attached to a request.
func (s *Session) State() SessionState {
	return SessionState{
		Authenticated: true,
		UserID:        s.UserID,
		UserName:      s.UserName,
		Administrator: s.Administrator,
	}
}

// SessionState is the principal carried by a request.
// The zero value is an anonymous session.
type SessionState struct {
	Authenticated bool
	UserID        uint
	UserName      string
	Administrator bool
}

// Anonymous returns a session state with no principal.
func Anonymous() SessionState {
	return SessionState{}
}

// Clear drops every field, returning the state to anonymous.
func (s *SessionState) Clear() {
	*s = SessionState{}
}
