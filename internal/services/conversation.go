package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// ConversationService validates requests from the HTTP layer before they reach the store.
type ConversationService struct {
	store store.Store
	log   zerolog.Logger
}

func NewConversationService(s store.Store, log zerolog.Logger) *ConversationService {
	return &ConversationService{store: s, log: log}
}

func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.store.Conversations().List(ctx, userID)
}

func (s *ConversationService) GetConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	return s.store.Conversations().Get(ctx, userID, conversationID)
}

func (s *ConversationService) CreateConversation(ctx context.Context, userID, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}
	c, err := s.store.Conversations().Create(ctx, &model.Conversation{OwnerID: userID, Title: title})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("conversation_id", c.ID).Msg("conversation created")
	return c, nil
}

// TouchConversation moves UpdatedAt forward. A zero time means now.
func (s *ConversationService) TouchConversation(ctx context.Context, userID, conversationID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	return s.store.Conversations().Touch(ctx, userID, conversationID, at)
}

func (s *ConversationService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if err := s.store.Conversations().Delete(ctx, userID, conversationID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("conversation_id", conversationID).Msg("conversation deleted")
	return nil
}

func (s *ConversationService) ListMessages(ctx context.Context, userID, conversationID string) ([]*model.Message, error) {
	return s.store.Messages().List(ctx, userID, conversationID)
}

func (s *ConversationService) AppendMessage(ctx context.Context, userID string, m *model.Message) (*model.Message, error) {
	if strings.TrimSpace(m.Content) == "" {
		return nil, model.NewValidationError("content", "content is required")
	}
	if err := model.ValidateNewMessage(m); err != nil {
		return nil, err
	}
	if m.AudioURL != nil && *m.AudioURL == "" {
		m.AudioURL = nil
	}
	out, err := s.store.Messages().Create(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("conversation_id", out.ConversationID).Str("message_id", out.ID).Str("role", string(out.Role)).Msg("message appended")
	return out, nil
}
