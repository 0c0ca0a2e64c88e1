package auth

import (
	"context"
)

// ActorInfo contains information about an authenticated caller
type ActorInfo struct {
	UserID  string `json:"userId"`  // Owner of every conversation the caller touches
	KeyName string `json:"keyName"` // Human-readable name
}

// Authorizer validates API keys and checks permissions in one call
type Authorizer interface {
	// Authorize validates the API key for operation on resource.
	// Returns ActorInfo if authorized, error if authentication or authorization fails
	Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error)
}
