package store

import (
	"context"
	"time"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

// Store exposes persistence operations required by the conversation layer.
// Implementations live under internal/store/<driver>/ (postgres, sqlite) and
// internal/remote for the HTTP-backed adapter.
//
// Every call is scoped to an owner; a conversation owned by someone else is
// reported as model.ErrNotFound.
type Store interface {
	Conversations() Conversations
	Messages() Messages
	Profiles() Profiles
}

type Conversations interface {
	// Create inserts a conversation for c.OwnerID with c.Title. The store
	// assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error)
	// List returns conversations ordered by UpdatedAt descending.
	List(ctx context.Context, ownerID string) ([]*model.Conversation, error)
	// Touch moves UpdatedAt forward to at. It never moves it backwards.
	Touch(ctx context.Context, ownerID, conversationID string, at time.Time) error
	// Delete removes the conversation and all of its messages.
	Delete(ctx context.Context, ownerID, conversationID string) error
}

type Messages interface {
	// Create inserts m into m.ConversationID. The store assigns ID and Timestamp.
	Create(ctx context.Context, ownerID string, m *model.Message) (*model.Message, error)
	// List returns the full log ordered by Timestamp ascending.
	List(ctx context.Context, ownerID, conversationID string) ([]*model.Message, error)
}

type Profiles interface {
	// GetOrCreate returns the user's profile, inserting an empty one first if
	// none exists.
	GetOrCreate(ctx context.Context, userID string) (*model.Profile, error)
	// Update replaces the editable fields and bumps UpdatedAt. A missing
	// profile is created.
	Update(ctx context.Context, userID string, upd *model.ProfileUpdate) (*model.Profile, error)
}
