package auth

import (
	"context"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only
	LocalDevAPIKey = "sk_local_journal_dev_key"
	// LocalDevUserID is the user the development key resolves to
	LocalDevUserID = "journal-dev"
)

// MockAuthorizer provides a simple authorizer for local development
// It only recognizes the hardcoded LocalDevAPIKey and resolves it to the journal-dev user
type MockAuthorizer struct{}

// NewMockAuthorizer creates a new MockAuthorizer for local development
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

// Authorize validates the hardcoded API key
func (m *MockAuthorizer) Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error) {
	if apiKey != LocalDevAPIKey {
		return nil, ErrInvalidAPIKey
	}
	return &ActorInfo{UserID: LocalDevUserID, KeyName: "Local Development Key"}, nil
}
