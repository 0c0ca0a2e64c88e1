package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store/sqlite"
)

func newTestService(t *testing.T) *ConversationService {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewConversationService(sqlite.NewWithDB(db), zerolog.Nop())
}

func TestConversationService_CreateTrimsTitle(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.CreateConversation(context.Background(), "u1", "  Morning pages  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Title != "Morning pages" {
		t.Fatalf("expected trimmed title, got %q", c.Title)
	}
	if _, err := svc.CreateConversation(context.Background(), "u1", "   "); !model.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConversationService_AppendValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.CreateConversation(ctx, "u1", "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name string
		msg  model.Message
	}{
		{"blank content", model.Message{ConversationID: c.ID, Content: " ", Role: model.RoleUser}},
		{"bad role", model.Message{ConversationID: c.ID, Content: "hi", Role: "system"}},
		{"bad emotion json", model.Message{ConversationID: c.ID, Content: "hi", Role: model.RoleUser, EmotionAnalysis: []byte("{")}},
	}
	for _, tc := range cases {
		m := tc.msg
		if _, err := svc.AppendMessage(ctx, "u1", &m); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	empty := ""
	out, err := svc.AppendMessage(ctx, "u1", &model.Message{ConversationID: c.ID, Content: "hi", Role: model.RoleUser, AudioURL: &empty})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if out.AudioURL != nil {
		t.Fatalf("empty audio url should be dropped")
	}
	msgs, err := svc.ListMessages(ctx, "u1", c.ID)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("list: n=%d err=%v", len(msgs), err)
	}
}

func TestConversationService_TouchAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, _ := svc.CreateConversation(ctx, "u1", "a")
	time.Sleep(2 * time.Millisecond)
	b, _ := svc.CreateConversation(ctx, "u1", "b")

	if err := svc.TouchConversation(ctx, "u1", a.ID, time.Time{}); err != nil {
		t.Fatalf("touch: %v", err)
	}
	list, err := svc.ListConversations(ctx, "u1")
	if err != nil || len(list) != 2 || list[0].ID != a.ID {
		t.Fatalf("expected touched conversation first, got %+v err=%v", list, err)
	}

	if err := svc.DeleteConversation(ctx, "u2", b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete by other user: expected not found, got %v", err)
	}
	if err := svc.DeleteConversation(ctx, "u1", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetConversation(ctx, "u1", b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get after delete: expected not found, got %v", err)
	}
}
