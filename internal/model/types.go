package model

import (
	"encoding/json"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError("role", "must be user or assistant")
	}
	return r, nil
}

// Conversation is a named, ordered sequence of messages owned by one user.
type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is an immutable turn within a conversation.
type Message struct {
	ID              string          `json:"id"`
	ConversationID  string          `json:"conversationId"`
	Content         string          `json:"content"`
	Role            Role            `json:"role"`
	Timestamp       time.Time       `json:"timestamp"`
	AudioURL        *string         `json:"audioUrl,omitempty"`
	EmotionAnalysis json.RawMessage `json:"emotionAnalysis,omitempty"`
}
