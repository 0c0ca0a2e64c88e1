package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	owner := "u-" + uuid.New().String()
	stranger := "u-" + uuid.New().String()

	// Conversations
	c1, err := s.Conversations().Create(ctx, &model.Conversation{OwnerID: owner, Title: "first"})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if c1.ID == "" || c1.OwnerID != owner || c1.Title != "first" {
		t.Fatalf("CreateConversation: unexpected record %+v", c1)
	}
	if c1.CreatedAt.IsZero() || !c1.CreatedAt.Equal(c1.UpdatedAt) {
		t.Fatalf("CreateConversation: expected createdAt == updatedAt, got %v / %v", c1.CreatedAt, c1.UpdatedAt)
	}
	time.Sleep(5 * time.Millisecond) // ensure distinct timestamps
	c2, err := s.Conversations().Create(ctx, &model.Conversation{OwnerID: owner, Title: "second"})
	if err != nil {
		t.Fatalf("CreateConversation c2: %v", err)
	}

	if got, err := s.Conversations().Get(ctx, owner, c1.ID); err != nil || got == nil || got.Title != "first" {
		t.Fatalf("GetConversation: got=%v err=%v", got, err)
	}
	if _, err := s.Conversations().Get(ctx, stranger, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetConversation by stranger: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Conversations().Get(ctx, owner, uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetConversation missing: expected ErrNotFound, got %v", err)
	}

	lst, err := s.Conversations().List(ctx, owner)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListConversations: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != c2.ID || lst[1].ID != c1.ID {
		t.Fatalf("ListConversations: expected newest first, got %s, %s", lst[0].Title, lst[1].Title)
	}
	if other, err := s.Conversations().List(ctx, stranger); err != nil || len(other) != 0 {
		t.Fatalf("ListConversations stranger: n=%d err=%v", len(other), err)
	}

	// Messages
	audio := "file:///tmp/reply.mp3"
	m1, err := s.Messages().Create(ctx, owner, &model.Message{ConversationID: c1.ID, Content: "hello", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("CreateMessage m1: %v", err)
	}
	if m1.ID == "" || m1.Timestamp.IsZero() {
		t.Fatalf("CreateMessage: store did not assign id/timestamp: %+v", m1)
	}
	m2, err := s.Messages().Create(ctx, owner, &model.Message{
		ConversationID:  c1.ID,
		Content:         "hi there",
		Role:            model.RoleAssistant,
		AudioURL:        &audio,
		EmotionAnalysis: json.RawMessage(`{"emotion":"calm"}`),
	})
	if err != nil {
		t.Fatalf("CreateMessage m2: %v", err)
	}
	if _, err := s.Messages().Create(ctx, stranger, &model.Message{ConversationID: c1.ID, Content: "intruder", Role: model.RoleUser}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CreateMessage by stranger: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Messages().Create(ctx, owner, &model.Message{ConversationID: uuid.New().String(), Content: "orphan", Role: model.RoleUser}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CreateMessage orphan: expected ErrNotFound, got %v", err)
	}

	msgs, err := s.Messages().List(ctx, owner, c1.ID)
	if err != nil || len(msgs) != 2 {
		t.Fatalf("ListMessages: n=%d err=%v", len(msgs), err)
	}
	if msgs[0].ID != m1.ID || msgs[1].ID != m2.ID {
		t.Fatalf("ListMessages: expected ascending order, got %q then %q", msgs[0].Content, msgs[1].Content)
	}
	if msgs[1].AudioURL == nil || *msgs[1].AudioURL != audio {
		t.Fatalf("ListMessages: audio url not round-tripped: %v", msgs[1].AudioURL)
	}
	var emo map[string]string
	if err := json.Unmarshal(msgs[1].EmotionAnalysis, &emo); err != nil || emo["emotion"] != "calm" {
		t.Fatalf("ListMessages: emotion analysis not round-tripped: %s err=%v", string(msgs[1].EmotionAnalysis), err)
	}
	if _, err := s.Messages().List(ctx, stranger, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("ListMessages by stranger: expected ErrNotFound, got %v", err)
	}

	// Appending bumps the conversation, so c1 is now the most recently updated.
	lst, err = s.Conversations().List(ctx, owner)
	if err != nil || len(lst) != 2 || lst[0].ID != c1.ID {
		t.Fatalf("ListConversations after append: expected c1 first, got %+v err=%v", lst, err)
	}

	// Touch moves forward, never backwards.
	future := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	if err := s.Conversations().Touch(ctx, owner, c2.ID, future); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	got, err := s.Conversations().Get(ctx, owner, c2.ID)
	if err != nil || !got.UpdatedAt.Equal(future) {
		t.Fatalf("Touch: expected updatedAt=%v, got %+v err=%v", future, got, err)
	}
	if err := s.Conversations().Touch(ctx, owner, c2.ID, future.Add(-48*time.Hour)); err != nil {
		t.Fatalf("Touch backwards: %v", err)
	}
	if got, err := s.Conversations().Get(ctx, owner, c2.ID); err != nil || !got.UpdatedAt.Equal(future) {
		t.Fatalf("Touch backwards moved updatedAt: %+v err=%v", got, err)
	}
	if err := s.Conversations().Touch(ctx, stranger, c2.ID, future); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Touch by stranger: expected ErrNotFound, got %v", err)
	}
	if lst, err := s.Conversations().List(ctx, owner); err != nil || lst[0].ID != c2.ID {
		t.Fatalf("ListConversations after touch: expected c2 first, err=%v", err)
	}

	// Delete cascades to messages.
	if err := s.Conversations().Delete(ctx, stranger, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete by stranger: expected ErrNotFound, got %v", err)
	}
	if err := s.Conversations().Delete(ctx, owner, c1.ID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if _, err := s.Conversations().Get(ctx, owner, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetConversation after delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Messages().List(ctx, owner, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("ListMessages after delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Conversations().Delete(ctx, owner, c1.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Conversations().Delete(ctx, owner, c2.ID); err != nil {
		t.Fatalf("DeleteConversation c2: %v", err)
	}

	runProfiles(t, ctx, s, owner, stranger)
}

func runProfiles(t *testing.T, ctx context.Context, s store.Store, owner, stranger string) {
	t.Helper()

	// First read creates an empty profile; a second read returns the same row.
	p, err := s.Profiles().GetOrCreate(ctx, owner)
	if err != nil {
		t.Fatalf("GetOrCreate profile: %v", err)
	}
	if p.ID != owner || p.FullName != nil || p.DiagnosisAge != nil || p.DiagnosisType != nil {
		t.Fatalf("GetOrCreate profile: expected empty profile, got %+v", p)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatalf("GetOrCreate profile: missing timestamps %+v", p)
	}
	again, err := s.Profiles().GetOrCreate(ctx, owner)
	if err != nil || !again.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("GetOrCreate profile twice: got=%+v err=%v", again, err)
	}

	name, kind, age := "Sam Lee", model.DiagnosisADHD, 31
	time.Sleep(5 * time.Millisecond)
	up, err := s.Profiles().Update(ctx, owner, &model.ProfileUpdate{FullName: &name, DiagnosisAge: &age, DiagnosisType: &kind})
	if err != nil {
		t.Fatalf("Update profile: %v", err)
	}
	if up.FullName == nil || *up.FullName != name || up.DiagnosisAge == nil || *up.DiagnosisAge != age || up.DiagnosisType == nil || *up.DiagnosisType != kind {
		t.Fatalf("Update profile: unexpected record %+v", up)
	}
	if !up.CreatedAt.Equal(p.CreatedAt) || !up.UpdatedAt.After(p.UpdatedAt) {
		t.Fatalf("Update profile: expected createdAt kept and updatedAt bumped, got %v / %v", up.CreatedAt, up.UpdatedAt)
	}

	// Nil fields clear stored values.
	cleared, err := s.Profiles().Update(ctx, owner, &model.ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("Update profile clear: %v", err)
	}
	if cleared.DiagnosisAge != nil || cleared.DiagnosisType != nil || cleared.FullName == nil {
		t.Fatalf("Update profile clear: unexpected record %+v", cleared)
	}

	bad := "Unknown"
	if _, err := s.Profiles().Update(ctx, owner, &model.ProfileUpdate{DiagnosisType: &bad}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Update profile invalid type: expected ErrValidation, got %v", err)
	}

	// Profiles are per user; Update creates a missing one.
	other, err := s.Profiles().Update(ctx, stranger, &model.ProfileUpdate{DiagnosisType: &kind})
	if err != nil || other.ID != stranger || other.FullName != nil {
		t.Fatalf("Update stranger profile: got=%+v err=%v", other, err)
	}
	if mine, err := s.Profiles().GetOrCreate(ctx, owner); err != nil || mine.FullName == nil || *mine.FullName != name {
		t.Fatalf("owner profile changed by stranger update: got=%+v err=%v", mine, err)
	}
}
