package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorettarehm/audhd.ai/internal/api"
	"github.com/lorettarehm/audhd.ai/internal/auth"
	"github.com/lorettarehm/audhd.ai/internal/conversation"
	"github.com/lorettarehm/audhd.ai/internal/identity"
	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/services"
	"github.com/lorettarehm/audhd.ai/internal/store/sqlite"
)

type upHealth struct{}

func (upHealth) IsHealthy() bool { return true }
func (upHealth) Down() []string  { return nil }

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(context.Background(), db))

	st := sqlite.NewWithDB(db)
	svc := services.NewConversationService(st, zerolog.Nop())
	profiles := services.NewProfileService(st, zerolog.Nop())
	authz := auth.NewKeyAuthorizer(map[string]string{"sk_alice": "alice", "sk_bob": "bob"})
	srv := httptest.NewServer(api.NewRouter(svc, profiles, authz, upHealth{}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, url, key string) *Client {
	t.Helper()
	c, err := New(url, key, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New("", "k")
	assert.Error(t, err)
	_, err = New("http://localhost", "")
	assert.Error(t, err)
	_, err = New("http://localhost", "k", WithHTTPTimeout(0))
	assert.Error(t, err)
}

func TestClient_RoundTripAgainstService(t *testing.T) {
	srv := newService(t)
	c := newClient(t, srv.URL, "sk_alice")
	ctx := context.Background()

	who, err := c.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", who)

	first, err := c.Conversations().Create(ctx, &model.Conversation{OwnerID: who, Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, "alice", first.OwnerID)
	time.Sleep(2 * time.Millisecond)
	second, err := c.Conversations().Create(ctx, &model.Conversation{OwnerID: who, Title: "second"})
	require.NoError(t, err)

	list, err := c.Conversations().List(ctx, who)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	audio := "file:///tmp/a.mp3"
	m, err := c.Messages().Create(ctx, who, &model.Message{
		ConversationID:  first.ID,
		Content:         "hello",
		Role:            model.RoleUser,
		AudioURL:        &audio,
		EmotionAnalysis: json.RawMessage(`{"emotion":"calm"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Timestamp.IsZero())

	msgs, err := c.Messages().List(ctx, who, first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].AudioURL)
	assert.Equal(t, audio, *msgs[0].AudioURL)
	assert.JSONEq(t, `{"emotion":"calm"}`, string(msgs[0].EmotionAnalysis))

	// the append moved first to the top
	list, err = c.Conversations().List(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)

	require.NoError(t, c.Conversations().Touch(ctx, who, second.ID, time.Now().Add(time.Hour)))
	got, err := c.Conversations().Get(ctx, who, second.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(m.Timestamp))

	require.NoError(t, c.Conversations().Delete(ctx, who, first.ID))
	_, err = c.Messages().List(ctx, who, first.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
	assert.True(t, IsIrrecoverable(err))

	require.NoError(t, c.HealthPing(ctx))
}

func TestClient_OwnerComesFromKey(t *testing.T) {
	srv := newService(t)
	alice := newClient(t, srv.URL, "sk_alice")
	bob := newClient(t, srv.URL, "sk_bob")
	ctx := context.Background()

	conv, err := alice.Conversations().Create(ctx, &model.Conversation{OwnerID: "alice", Title: "private"})
	require.NoError(t, err)

	// an ownerID argument cannot widen access; the key decides
	_, err = bob.Conversations().Get(ctx, "alice", conv.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
	err = bob.Conversations().Delete(ctx, "alice", conv.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
	_, err = alice.Conversations().Get(ctx, "alice", conv.ID)
	assert.NoError(t, err)

	_, err = alice.Conversations().Get(ctx, "alice", uuid.New().String())
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestClient_BadKeyIsUnauthorized(t *testing.T) {
	srv := newService(t)
	c := newClient(t, srv.URL, "sk_wrong")
	_, err := c.Whoami(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized), "got %v", err)
}

func TestClient_RetriesRecoverableReads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":"alice"}`))
	}))
	defer srv.Close()

	who, err := newClient(t, srv.URL, "k").Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", who)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "k").Conversations().List(context.Background(), "alice")
	require.Error(t, err)
	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadGateway, ce.StatusCode)
	assert.Equal(t, Recoverable, ce.Category)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_DoesNotRetryClientErrorsOrWrites(t *testing.T) {
	var reads, writes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reads.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writes.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL, "k")
	ctx := context.Background()

	_, err := c.Conversations().Get(ctx, "alice", "x")
	assert.True(t, errors.Is(err, model.ErrValidation), "got %v", err)
	assert.Equal(t, int32(1), reads.Load())

	_, err = c.Conversations().Create(ctx, &model.Conversation{OwnerID: "alice", Title: "t"})
	assert.Error(t, err)
	assert.False(t, IsIrrecoverable(err))
	assert.Equal(t, int32(1), writes.Load())
}

func TestClient_RejectsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"conversations":[{"id":"","ownerId":"alice","title":"x"}],"count":1}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "k").Conversations().List(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation), "got %v", err)
}

func TestClient_NetworkErrorIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, "k").Whoami(context.Background())
	require.Error(t, err)
	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.StatusCode)
	assert.False(t, IsIrrecoverable(err))
}

func TestClient_MalformedIDIsNotFound(t *testing.T) {
	srv := newService(t)
	c := newClient(t, srv.URL, "sk_alice")
	ctx := context.Background()

	_, err := c.Conversations().Get(ctx, "alice", "not-a-uuid")
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)

	st, err := conversation.Start(ctx, c, identity.Static("alice"))
	require.NoError(t, err)
	defer st.Close()

	err = st.SelectConversation(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, conversation.ErrNotFound), "select: got %v", err)
	err = st.DeleteConversation(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, conversation.ErrNotFound), "delete: got %v", err)
	assert.Nil(t, st.ActiveConversation())
}

type countingTransport struct {
	calls atomic.Int32
	base  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return t.base.RoundTrip(req)
}

func TestClient_WithHTTPClient(t *testing.T) {
	srv := newService(t)
	tr := &countingTransport{base: srv.Client().Transport}

	c, err := New(srv.URL, "sk_alice", WithHTTPClient(&http.Client{Transport: tr}), WithHTTPTimeout(5*time.Second))
	require.NoError(t, err)
	who, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", who)
	assert.Equal(t, int32(1), tr.calls.Load())

	_, err = New(srv.URL, "sk_alice", WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestClient_Profiles(t *testing.T) {
	srv := newService(t)
	c := newClient(t, srv.URL, "sk_alice")
	ctx := context.Background()

	p, err := c.Profiles().GetOrCreate(ctx, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
	assert.Nil(t, p.FullName)

	name, age, kind := "Alice", 40, model.DiagnosisOther
	p, err = c.Profiles().Update(ctx, "ignored", &model.ProfileUpdate{FullName: &name, DiagnosisAge: &age, DiagnosisType: &kind})
	require.NoError(t, err)
	require.NotNil(t, p.DiagnosisAge)
	assert.Equal(t, 40, *p.DiagnosisAge)

	bad := -1
	_, err = c.Profiles().Update(ctx, "", &model.ProfileUpdate{DiagnosisAge: &bad})
	assert.True(t, errors.Is(err, model.ErrValidation), "got %v", err)

	other, err := newClient(t, srv.URL, "sk_bob").Profiles().GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "bob", other.ID)
	assert.Nil(t, other.FullName)
}
