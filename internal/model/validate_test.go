package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("assistant"); err != nil || r != RoleAssistant {
		t.Fatalf("ParseRole(assistant) = %q, %v", r, err)
	}
	if _, err := ParseRole("system"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestValidateMessage(t *testing.T) {
	now := time.Now()
	ok := &Message{ID: "m1", ConversationID: "c1", Content: "hi", Role: RoleUser, Timestamp: now}
	if err := ValidateMessage(ok); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}

	bad := *ok
	bad.EmotionAnalysis = json.RawMessage(`{"emotion":`)
	if err := ValidateMessage(&bad); !IsValidationError(err) {
		t.Fatalf("expected validation error for broken JSON, got %v", err)
	}

	noRole := *ok
	noRole.Role = ""
	if err := ValidateMessage(&noRole); !IsValidationError(err) {
		t.Fatalf("expected validation error for missing role, got %v", err)
	}
}

func TestValidateConversation(t *testing.T) {
	if err := ValidateConversation(&Conversation{ID: "c1", OwnerID: "u1"}); err == nil {
		t.Fatalf("expected error for zero timestamps")
	}
	now := time.Now()
	if err := ValidateConversation(&Conversation{ID: "c1", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title should fail, got %v", err)
	}
	if err := ValidateTitle("Chat A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
