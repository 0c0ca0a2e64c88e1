package auth

import (
	"context"
	"crypto/subtle"
)

// KeyAuthorizer resolves configured API keys to users.
type KeyAuthorizer struct {
	keys map[string]string // api key -> user id
}

// NewKeyAuthorizer copies keys so later changes to the map have no effect.
func NewKeyAuthorizer(keys map[string]string) *KeyAuthorizer {
	cp := make(map[string]string, len(keys))
	for k, v := range keys {
		if k != "" && v != "" {
			cp[k] = v
		}
	}
	return &KeyAuthorizer{keys: cp}
}

// Authorize compares apiKey against every configured key in constant time.
func (a *KeyAuthorizer) Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error) {
	var match string
	for k, user := range a.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(apiKey)) == 1 {
			match = user
		}
	}
	if match == "" {
		return nil, ErrInvalidAPIKey
	}
	return &ActorInfo{UserID: match, KeyName: "configured"}, nil
}

// Chain tries each authorizer in order and returns the first success.
type Chain []Authorizer

func (c Chain) Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error) {
	for _, a := range c {
		if info, err := a.Authorize(ctx, apiKey, operation, resource); err == nil {
			return info, nil
		}
	}
	return nil, ErrInvalidAPIKey
}
