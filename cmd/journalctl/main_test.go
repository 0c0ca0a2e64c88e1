package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorettarehm/audhd.ai/internal/analytics"
	"github.com/lorettarehm/audhd.ai/internal/api"
	"github.com/lorettarehm/audhd.ai/internal/auth"
	"github.com/lorettarehm/audhd.ai/internal/config"
	"github.com/lorettarehm/audhd.ai/internal/services"
	"github.com/lorettarehm/audhd.ai/internal/store/sqlite"
)

type upHealth struct{}

func (upHealth) IsHealthy() bool { return true }
func (upHealth) Down() []string  { return nil }

func newTestConfig(t *testing.T) *config.ClientConfig {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(context.Background(), db))

	st := sqlite.NewWithDB(db)
	svc := services.NewConversationService(st, zerolog.Nop())
	profiles := services.NewProfileService(st, zerolog.Nop())
	authz := auth.NewKeyAuthorizer(map[string]string{"sk_alice": "alice"})
	srv := httptest.NewServer(api.NewRouter(svc, profiles, authz, upHealth{}))
	t.Cleanup(srv.Close)

	return &config.ClientConfig{
		APIURL:             srv.URL,
		APIKey:             "sk_alice",
		HTTPTimeoutSeconds: 5,
		AudioDir:           t.TempDir(),
	}
}

func run(t *testing.T, cfg *config.ClientConfig, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfg *config.ClientConfig, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, args...)
	require.NoError(t, err, "journalctl %s: %s", strings.Join(args, " "), out)
	return out
}

func newConversation(t *testing.T, cfg *config.ClientConfig, title string) string {
	t.Helper()
	out := mustRun(t, cfg, "new", title)
	id, _, ok := strings.Cut(strings.TrimSpace(out), "\t")
	require.True(t, ok, "unexpected output %q", out)
	return id
}

func TestCLI_ConversationFlow(t *testing.T) {
	cfg := newTestConfig(t)

	first := newConversation(t, cfg, "Work stress")
	time.Sleep(2 * time.Millisecond)
	second := newConversation(t, cfg, "Morning routine")

	out := mustRun(t, cfg, "list")
	assert.Less(t, strings.Index(out, second), strings.Index(out, first), "newest first")

	mustRun(t, cfg, "say", first, "deadline tomorrow")
	mustRun(t, cfg, "say", first, "breathe", "--role", "assistant", "--audio-url", "file:///tmp/b.mp3")

	out = mustRun(t, cfg, "list")
	assert.Less(t, strings.Index(out, first), strings.Index(out, second), "append moves the conversation to the top")

	out = mustRun(t, cfg, "show", first)
	assert.Contains(t, out, "# Work stress")
	assert.Less(t, strings.Index(out, "user: deadline tomorrow"), strings.Index(out, "assistant: breathe"))
	assert.Contains(t, out, "(audio: file:///tmp/b.mp3)")

	_, err := run(t, cfg, "say", first, "hi", "--role", "system")
	assert.Error(t, err)

	mustRun(t, cfg, "rm", second)
	out = mustRun(t, cfg, "list")
	assert.NotContains(t, out, second)
	_, err = run(t, cfg, "show", second)
	assert.Error(t, err)
}

func TestCLI_NewDefaultsTitle(t *testing.T) {
	cfg := newTestConfig(t)
	out := mustRun(t, cfg, "new")
	assert.Contains(t, out, defaultTitle(time.Now()))
	assert.Equal(t, "Chat 3/9/2024", defaultTitle(time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)))
}

func TestCLI_ExportAndStats(t *testing.T) {
	cfg := newTestConfig(t)
	a := newConversation(t, cfg, "Weekly plan")
	b := newConversation(t, cfg, "Chat")
	mustRun(t, cfg, "say", a, "ship it")
	mustRun(t, cfg, "say", a, "ok", "--role", "assistant")
	mustRun(t, cfg, "say", b, "hello")

	out := mustRun(t, cfg, "export")
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "conversation_id", rows[0][0])

	out = mustRun(t, cfg, "export", "--id", a)
	rows, err = csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, a, rows[1][0])

	_, err = run(t, cfg, "export", "--id", "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)

	out = mustRun(t, cfg, "stats", "--range", "week")
	var rep analytics.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.TotalConversations)
	assert.Equal(t, 3, rep.TotalMessages)
	assert.Len(t, rep.DailyActivity, 7)

	_, err = run(t, cfg, "stats", "--range", "decade")
	assert.Error(t, err)
}

func TestCLI_Speak(t *testing.T) {
	cfg := newTestConfig(t)
	tts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
	}))
	defer tts.Close()

	id := newConversation(t, cfg, "voice")
	_, err := run(t, cfg, "speak", id, "hello")
	assert.Error(t, err, "speak needs an ElevenLabs key")

	cfg.ElevenLabsAPIKey = "xi"
	cfg.ElevenLabsBaseURL = tts.URL
	out := mustRun(t, cfg, "speak", id, "hello there")
	assert.Contains(t, out, "file://")

	out = mustRun(t, cfg, "show", id)
	assert.Contains(t, out, "assistant: hello there (audio: file://")
}

func TestCLI_Agent(t *testing.T) {
	cfg := newTestConfig(t)
	var agent string
	el := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		agent = body["agent_id"]
		_, _ = w.Write([]byte(`{"conversation_id":"cv_1"}`))
	}))
	defer el.Close()
	cfg.ElevenLabsAPIKey = "xi"
	cfg.ElevenLabsBaseURL = el.URL

	out := mustRun(t, cfg, "agent")
	assert.JSONEq(t, `{"conversation_id":"cv_1"}`, out)
	assert.Equal(t, "default", agent)

	mustRun(t, cfg, "agent", "coach")
	assert.Equal(t, "coach", agent)
}

func TestCLI_Profile(t *testing.T) {
	cfg := newTestConfig(t)

	out := mustRun(t, cfg, "profile")
	assert.Contains(t, out, "user:           alice")
	assert.Contains(t, out, "name:           -")

	out = mustRun(t, cfg, "profile", "--name", "Alice Liddell", "--diagnosis-age", "29", "--diagnosis-type", "Both")
	assert.Contains(t, out, "name:           Alice Liddell")
	assert.Contains(t, out, "diagnosis age:  29")
	assert.Contains(t, out, "diagnosis type: Both")

	// unnamed fields keep their value; an empty value clears
	out = mustRun(t, cfg, "profile", "--diagnosis-age", "")
	assert.Contains(t, out, "name:           Alice Liddell")
	assert.Contains(t, out, "diagnosis age:  -")
	assert.Contains(t, out, "diagnosis type: Both")

	_, err := run(t, cfg, "profile", "--diagnosis-age", "young")
	assert.Error(t, err)
	_, err = run(t, cfg, "profile", "--diagnosis-type", "ADD")
	assert.Error(t, err)
}

func TestCLI_RequiresKey(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.APIKey = ""
	_, err := run(t, cfg, "list")
	assert.Error(t, err)

	_, err = run(t, cfg, "list", "--key", "sk_wrong")
	assert.Error(t, err)
}
