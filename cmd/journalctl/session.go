package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/conversation"
	"github.com/lorettarehm/audhd.ai/internal/identity"
	"github.com/lorettarehm/audhd.ai/internal/logger"
	"github.com/lorettarehm/audhd.ai/internal/remote"
)

// session is a signed-in conversation store backed by the journal service.
type session struct {
	client *remote.Client
	ids    *identity.Session
	store  *conversation.Store
	log    zerolog.Logger
}

// openSession resolves the key's user, signs in and loads the conversation list.
func openSession(ctx context.Context, opts *options) (*session, error) {
	if opts.key == "" {
		return nil, fmt.Errorf("an API key is required (--key or JOURNAL_API_KEY)")
	}
	log := logger.NewConsole("journalctl", opts.debug)

	client, err := remote.New(opts.api, opts.key,
		remote.WithHTTPTimeout(opts.timeout),
		remote.WithDebugLogging(opts.debug),
	)
	if err != nil {
		return nil, err
	}
	userID, err := client.Whoami(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	ids := identity.NewSession()
	ids.SignIn(userID)

	st, err := conversation.Start(ctx, client, ids, conversation.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("user_id", userID).Int("conversations", len(st.Conversations())).Msg("session opened")
	return &session{client: client, ids: ids, store: st, log: log}, nil
}

func (s *session) userID() string {
	id, _ := s.ids.CurrentUserID()
	return id
}

func (s *session) Close() {
	s.store.Close()
	s.ids.SignOut()
}
