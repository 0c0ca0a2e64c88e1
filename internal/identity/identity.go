// Package identity supplies the signed-in user to the conversation store.
package identity

import "sync"

// Provider reports the current user. ok is false when nobody is signed in.
type Provider interface {
	CurrentUserID() (userID string, ok bool)
}

// Static is a fixed identity, mostly useful in tests and one-shot tools.
type Static string

func (s Static) CurrentUserID() (string, bool) { return string(s), s != "" }

// Session is a mutable identity tied to a sign-in/sign-out lifecycle.
type Session struct {
	mu     sync.RWMutex
	userID string
}

// NewSession returns a signed-out session.
func NewSession() *Session { return &Session{} }

func (s *Session) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

// SignIn binds the session to userID.
func (s *Session) SignIn(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// SignOut clears the identity; subsequent store calls fail as unauthenticated.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()
}
