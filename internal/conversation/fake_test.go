package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

var errBoom = errors.New("boom")

// fakeRemote is an in-memory store.Store with per-operation failure injection.
type fakeRemote struct {
	mu    sync.Mutex
	clock time.Time
	seq   int
	convs map[string]*model.Conversation
	msgs  map[string][]*model.Message
	fail  map[string]error
	// block, when set for an op, is waited on before the op runs.
	block map[string]chan struct{}
	calls map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		convs: map[string]*model.Conversation{},
		msgs:  map[string][]*model.Message{},
		fail:  map[string]error{},
		block: map[string]chan struct{}{},
		calls: map[string]int{},
	}
}

func (f *fakeRemote) Conversations() store.Conversations { return fakeConversations{f} }
func (f *fakeRemote) Messages() store.Messages           { return fakeMessages{f} }

// Profiles is unused by the conversation store.
func (f *fakeRemote) Profiles() store.Profiles { return nil }

// enter records the call and returns the injected error for op, if any.
func (f *fakeRemote) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	ch := f.block[op]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[op]
}

func (f *fakeRemote) setFail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

func (f *fakeRemote) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// tick advances the fake clock; callers hold f.mu.
func (f *fakeRemote) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// seed adds a conversation with explicit timestamps.
func (f *fakeRemote) seed(owner, title string, updated time.Time) *model.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c := &model.Conversation{
		ID:        fmt.Sprintf("c%d", f.seq),
		OwnerID:   owner,
		Title:     title,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
	f.convs[c.ID] = c
	cp := *c
	return &cp
}

func (f *fakeRemote) owned(owner, id string) (*model.Conversation, error) {
	c, ok := f.convs[id]
	if !ok || c.OwnerID != owner {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	return c, nil
}

type fakeConversations struct{ f *fakeRemote }

func (fc fakeConversations) Create(_ context.Context, c *model.Conversation) (*model.Conversation, error) {
	if err := fc.f.enter("create"); err != nil {
		return nil, err
	}
	fc.f.mu.Lock()
	defer fc.f.mu.Unlock()
	fc.f.seq++
	now := fc.f.tick()
	out := &model.Conversation{ID: fmt.Sprintf("c%d", fc.f.seq), OwnerID: c.OwnerID, Title: c.Title, CreatedAt: now, UpdatedAt: now}
	fc.f.convs[out.ID] = out
	cp := *out
	return &cp, nil
}

func (fc fakeConversations) Get(_ context.Context, owner, id string) (*model.Conversation, error) {
	if err := fc.f.enter("get"); err != nil {
		return nil, err
	}
	fc.f.mu.Lock()
	defer fc.f.mu.Unlock()
	c, err := fc.f.owned(owner, id)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (fc fakeConversations) List(_ context.Context, owner string) ([]*model.Conversation, error) {
	if err := fc.f.enter("list"); err != nil {
		return nil, err
	}
	fc.f.mu.Lock()
	defer fc.f.mu.Unlock()
	var out []*model.Conversation
	for _, c := range fc.f.convs {
		if c.OwnerID == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (fc fakeConversations) Touch(_ context.Context, owner, id string, at time.Time) error {
	if err := fc.f.enter("touch"); err != nil {
		return err
	}
	fc.f.mu.Lock()
	defer fc.f.mu.Unlock()
	c, err := fc.f.owned(owner, id)
	if err != nil {
		return err
	}
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
	}
	return nil
}

func (fc fakeConversations) Delete(_ context.Context, owner, id string) error {
	if err := fc.f.enter("delete"); err != nil {
		return err
	}
	fc.f.mu.Lock()
	defer fc.f.mu.Unlock()
	if _, err := fc.f.owned(owner, id); err != nil {
		return err
	}
	delete(fc.f.convs, id)
	delete(fc.f.msgs, id)
	return nil
}

type fakeMessages struct{ f *fakeRemote }

func (fm fakeMessages) Create(_ context.Context, owner string, m *model.Message) (*model.Message, error) {
	if err := fm.f.enter("append"); err != nil {
		return nil, err
	}
	fm.f.mu.Lock()
	defer fm.f.mu.Unlock()
	if _, err := fm.f.owned(owner, m.ConversationID); err != nil {
		return nil, err
	}
	fm.f.seq++
	out := *m
	out.ID = fmt.Sprintf("m%d", fm.f.seq)
	out.Timestamp = fm.f.tick()
	fm.f.msgs[m.ConversationID] = append(fm.f.msgs[m.ConversationID], &out)
	cp := out
	return &cp, nil
}

func (fm fakeMessages) List(_ context.Context, owner, id string) ([]*model.Message, error) {
	if err := fm.f.enter("messages"); err != nil {
		return nil, err
	}
	fm.f.mu.Lock()
	defer fm.f.mu.Unlock()
	if _, err := fm.f.owned(owner, id); err != nil {
		return nil, err
	}
	out := make([]*model.Message, 0, len(fm.f.msgs[id]))
	for _, m := range fm.f.msgs[id] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}
