package auth

import (
	"github.com/lorettarehm/audhd.ai/internal/config"
)

// AuthorizerFactory creates the appropriate Authorizer based on environment
type AuthorizerFactory struct {
	config *config.Config
}

// NewAuthorizerFactory creates a new AuthorizerFactory
func NewAuthorizerFactory(cfg *config.Config) *AuthorizerFactory {
	return &AuthorizerFactory{
		config: cfg,
	}
}

// CreateAuthorizer accepts the configured keys, plus the local dev key in development mode
func (f *AuthorizerFactory) CreateAuthorizer() Authorizer {
	chain := Chain{NewKeyAuthorizer(f.config.APIKeys)}
	if f.config.IsDevMode() {
		chain = append(chain, NewMockAuthorizer())
	}
	return chain
}

// IsDevMode returns true if development mode is enabled
func (f *AuthorizerFactory) IsDevMode() bool {
	return f.config.IsDevMode()
}
