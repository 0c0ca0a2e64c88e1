// Package conversation keeps the signed-in user's conversation list, the
// active conversation and its message log in sync with a store.Store.
//
// Local state only changes after the remote call it depends on succeeds. The
// one exception is the timestamp update that follows an append: the message is
// kept locally even when that update fails.
package conversation

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lorettarehm/audhd.ai/internal/identity"
	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// Store is the session-scoped conversation state. Create it with Start at
// sign-in and Close it at sign-out.
type Store struct {
	remote store.Store
	ids    identity.Provider
	log    zerolog.Logger
	now    func() time.Time

	busy atomic.Int32

	mu            sync.RWMutex
	conversations []model.Conversation
	active        *model.Conversation
	messages      []model.Message
	subs          []chan Event
	closed        bool
}

// Snapshot is a consistent copy of the Store's state.
type Snapshot struct {
	Conversations []model.Conversation
	Active        *model.Conversation
	Messages      []model.Message
	Busy          bool
}

// NewStore returns an empty Store. Most callers want Start.
func NewStore(remote store.Store, ids identity.Provider, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		ids:    ids,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start establishes a session: it builds a Store and loads the user's
// conversations once.
func Start(ctx context.Context, remote store.Store, ids identity.Provider, opts ...Option) (*Store, error) {
	s := NewStore(remote, ids, opts...)
	if err := s.LoadConversations(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close drops all local state and closes subscriber channels.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.publish(Event{Kind: EventCleared})
	s.conversations = nil
	s.active = nil
	s.messages = nil
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.closed = true
}

// Conversations returns the list ordered by UpdatedAt descending.
func (s *Store) Conversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.conversations)
}

// ActiveConversation returns the selected conversation, or nil.
func (s *Store) ActiveConversation() *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConversation(s.active)
}

// Messages returns the active conversation's log ordered by Timestamp ascending.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// IsBusy reports whether any operation is waiting on the remote store.
// It is advisory only.
func (s *Store) IsBusy() bool { return s.busy.Load() > 0 }

// Snapshot copies the whole state under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Conversations: slices.Clone(s.conversations),
		Active:        cloneConversation(s.active),
		Messages:      slices.Clone(s.messages),
		Busy:          s.IsBusy(),
	}
}

// LoadConversations replaces the local list with the remote one.
func (s *Store) LoadConversations(ctx context.Context) (err error) {
	const op = "load_conversations"
	uid, err := s.userID()
	if err != nil {
		return err
	}
	done := s.begin(op)
	defer func() { done(err) }()

	list, err := s.remote.Conversations().List(ctx, uid)
	if err != nil {
		return translate(op, err)
	}
	out := make([]model.Conversation, 0, len(list))
	for _, c := range list {
		if verr := model.ValidateConversation(c); verr != nil {
			return &RemoteError{Op: op, Err: verr}
		}
		out = append(out, *c)
	}
	// stable: equal timestamps keep the store's order
	slices.SortStableFunc(out, func(a, b model.Conversation) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	s.mu.Lock()
	s.conversations = out
	s.publish(Event{Kind: EventConversationsLoaded})
	s.mu.Unlock()
	s.log.Debug().Str("user_id", uid).Int("count", len(out)).Msg("conversations loaded")
	return nil
}

// CreateConversation inserts a conversation titled title and places it at the
// front of the local list.
func (s *Store) CreateConversation(ctx context.Context, title string) (c *model.Conversation, err error) {
	const op = "create_conversation"
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, invalid("title is required")
	}
	done := s.begin(op)
	defer func() { done(err) }()

	created, err := s.remote.Conversations().Create(ctx, &model.Conversation{OwnerID: uid, Title: title})
	if err != nil {
		return nil, translate(op, err)
	}
	if verr := model.ValidateConversation(created); verr != nil {
		return nil, &RemoteError{Op: op, Err: verr}
	}

	s.mu.Lock()
	s.conversations = place(s.conversations, *created)
	s.publish(Event{Kind: EventConversationCreated, ConversationID: created.ID})
	s.mu.Unlock()
	s.log.Info().Str("conversation_id", created.ID).Msg("conversation created")
	return cloneConversation(created), nil
}

// SelectConversation makes id the active conversation and loads its log. The
// conversation and the log are fetched concurrently; both must succeed.
func (s *Store) SelectConversation(ctx context.Context, id string) (err error) {
	const op = "select_conversation"
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if id == "" {
		return invalid("conversation id is required")
	}
	done := s.begin(op)
	defer func() { done(err) }()

	var (
		conv *model.Conversation
		msgs []*model.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.remote.Conversations().Get(gctx, uid, id)
		conv = c
		return err
	})
	g.Go(func() error {
		m, err := s.remote.Messages().List(gctx, uid, id)
		msgs = m
		return err
	})
	if err := g.Wait(); err != nil {
		return translate(op, err)
	}
	if verr := model.ValidateConversation(conv); verr != nil {
		return &RemoteError{Op: op, Err: verr}
	}
	log := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if verr := model.ValidateMessage(m); verr != nil {
			return &RemoteError{Op: op, Err: verr}
		}
		if m.ConversationID != id {
			return &RemoteError{Op: op, Err: model.NewValidationError("conversationId", "message belongs to another conversation")}
		}
		log = append(log, *m)
	}
	slices.SortStableFunc(log, func(a, b model.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	s.mu.Lock()
	s.active = cloneConversation(conv)
	s.messages = log
	if i := indexOf(s.conversations, id); i >= 0 {
		s.conversations = place(s.conversations, *conv)
	}
	s.publish(Event{Kind: EventConversationSelected, ConversationID: id})
	s.mu.Unlock()
	s.log.Debug().Str("conversation_id", id).Int("messages", len(log)).Msg("conversation selected")
	return nil
}

// AppendMessage adds a message to the active conversation, then moves the
// conversation's UpdatedAt forward. A failed timestamp update is logged and
// does not undo the append.
func (s *Store) AppendMessage(ctx context.Context, content string, role model.Role, audioURL *string) (m *model.Message, err error) {
	const op = "append_message"
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	var activeID string
	if s.active != nil {
		activeID = s.active.ID
	}
	s.mu.RUnlock()
	if activeID == "" {
		return nil, ErrNoActiveConversation
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content is required")
	}
	done := s.begin(op)
	defer func() { done(err) }()

	created, err := s.remote.Messages().Create(ctx, uid, &model.Message{
		ConversationID: activeID,
		Content:        content,
		Role:           role,
		AudioURL:       audioURL,
	})
	if err != nil {
		return nil, translate(op, err)
	}
	if verr := model.ValidateMessage(created); verr != nil {
		return nil, &RemoteError{Op: op, Err: verr}
	}

	at := s.now().UTC()
	if created.Timestamp.After(at) {
		at = created.Timestamp
	}

	s.mu.Lock()
	// the selection may have moved on while the insert was in flight
	if s.active != nil && s.active.ID == activeID {
		s.messages = appendOrdered(s.messages, *created)
		if at.After(s.active.UpdatedAt) {
			s.active.UpdatedAt = at
		}
	}
	if i := indexOf(s.conversations, activeID); i >= 0 {
		c := s.conversations[i]
		if at.After(c.UpdatedAt) {
			c.UpdatedAt = at
		}
		s.conversations = place(s.conversations, c)
	}
	s.publish(Event{Kind: EventMessageAppended, ConversationID: activeID})
	s.mu.Unlock()

	if terr := s.remote.Conversations().Touch(ctx, uid, activeID, at); terr != nil {
		touchFailuresTotal.Inc()
		s.log.Warn().Err(terr).
			Str("conversation_id", activeID).
			Str("message_id", created.ID).
			Msg("message appended but conversation timestamp update failed")
	}
	return created, nil
}

// DeleteConversation removes the conversation and its messages. Deleting the
// active conversation clears the selection.
func (s *Store) DeleteConversation(ctx context.Context, id string) (err error) {
	const op = "delete_conversation"
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if id == "" {
		return invalid("conversation id is required")
	}
	done := s.begin(op)
	defer func() { done(err) }()

	if err := s.remote.Conversations().Delete(ctx, uid, id); err != nil {
		return translate(op, err)
	}

	s.mu.Lock()
	if i := indexOf(s.conversations, id); i >= 0 {
		s.conversations = slices.Delete(s.conversations, i, i+1)
	}
	if s.active != nil && s.active.ID == id {
		s.active = nil
		s.messages = nil
	}
	s.publish(Event{Kind: EventConversationDeleted, ConversationID: id})
	s.mu.Unlock()
	s.log.Info().Str("conversation_id", id).Msg("conversation deleted")
	return nil
}

func (s *Store) userID() (string, error) {
	if s.ids == nil {
		return "", ErrNotAuthenticated
	}
	uid, ok := s.ids.CurrentUserID()
	if !ok || uid == "" {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

func (s *Store) begin(op string) func(error) {
	start := time.Now()
	s.busy.Add(1)
	inFlight.Inc()
	return func(err error) {
		s.busy.Add(-1)
		inFlight.Dec()
		observe(op, start, err)
		if err != nil {
			s.log.Debug().Err(err).Str("op", op).Msg("operation failed")
		}
	}
}

func cloneConversation(c *model.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func indexOf(list []model.Conversation, id string) int {
	return slices.IndexFunc(list, func(c model.Conversation) bool { return c.ID == id })
}

// place removes any entry with c.ID and inserts c ahead of the first entry that
// is not newer, so a touched conversation goes first among equal timestamps.
func place(list []model.Conversation, c model.Conversation) []model.Conversation {
	if i := indexOf(list, c.ID); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	i := slices.IndexFunc(list, func(x model.Conversation) bool { return !x.UpdatedAt.After(c.UpdatedAt) })
	if i < 0 {
		i = len(list)
	}
	return slices.Insert(list, i, c)
}

// appendOrdered keeps the log ascending even if a timestamp arrives out of order.
func appendOrdered(log []model.Message, m model.Message) []model.Message {
	i := len(log)
	for i > 0 && log[i-1].Timestamp.After(m.Timestamp) {
		i--
	}
	return slices.Insert(log, i, m)
}
