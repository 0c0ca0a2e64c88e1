package identity

import "testing"

func TestStatic(t *testing.T) {
	if id, ok := Static("u1").CurrentUserID(); !ok || id != "u1" {
		t.Fatalf("Static(u1): got %q ok=%v", id, ok)
	}
	if _, ok := Static("").CurrentUserID(); ok {
		t.Fatalf("empty Static should be signed out")
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	if _, ok := s.CurrentUserID(); ok {
		t.Fatalf("new session should be signed out")
	}
	s.SignIn("u42")
	if id, ok := s.CurrentUserID(); !ok || id != "u42" {
		t.Fatalf("after SignIn: got %q ok=%v", id, ok)
	}
	s.SignOut()
	if id, ok := s.CurrentUserID(); ok || id != "" {
		t.Fatalf("after SignOut: got %q ok=%v", id, ok)
	}
}
