package model

import (
	"encoding/json"
	"strings"
)

// ValidateConversation checks a record returned by a store before it is handed
// to callers.
func ValidateConversation(c *Conversation) error {
	if c == nil {
		return NewValidationError("conversation", "missing record")
	}
	if c.ID == "" {
		return NewValidationError("id", "conversation id is required")
	}
	if c.OwnerID == "" {
		return NewValidationError("ownerId", "owner id is required")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return NewValidationError("createdAt", "timestamps are required")
	}
	return nil
}

// ValidateMessage checks a stored message record.
func ValidateMessage(m *Message) error {
	if m == nil {
		return NewValidationError("message", "missing record")
	}
	if m.ID == "" {
		return NewValidationError("id", "message id is required")
	}
	if m.ConversationID == "" {
		return NewValidationError("conversationId", "conversation id is required")
	}
	if !m.Role.Valid() {
		return NewValidationError("role", "must be user or assistant")
	}
	if m.Timestamp.IsZero() {
		return NewValidationError("timestamp", "timestamp is required")
	}
	if len(m.EmotionAnalysis) > 0 && !json.Valid(m.EmotionAnalysis) {
		return NewValidationError("emotionAnalysis", "must be valid JSON")
	}
	return nil
}

// ValidateNewMessage checks the caller-supplied fields of a message insert.
func ValidateNewMessage(m *Message) error {
	if m == nil {
		return NewValidationError("message", "missing record")
	}
	if m.ConversationID == "" {
		return NewValidationError("conversationId", "conversation id is required")
	}
	if !m.Role.Valid() {
		return NewValidationError("role", "must be user or assistant")
	}
	if len(m.EmotionAnalysis) > 0 && !json.Valid(m.EmotionAnalysis) {
		return NewValidationError("emotionAnalysis", "must be valid JSON")
	}
	return nil
}

// ValidateTitle rejects blank conversation titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "title is required")
	}
	return nil
}
