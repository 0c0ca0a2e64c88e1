// Package remote is the HTTP Remote Store Adapter: a store.Store backed by the
// journal service API.
//
// The service derives the owner from the bearer key, so the ownerID arguments
// of store.Store are not sent on the wire.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

type retryConfig struct {
	maxAttempts int
	base        time.Duration
	max         time.Duration
}

// Client talks to the journal service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	rc      *resty.Client
	retry   retryConfig
}

// New returns a client for baseURL authenticated with apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second, Transport: http.DefaultTransport},
		retry:   retryConfig{maxAttempts: 3, base: 100 * time.Millisecond, max: 2 * time.Second},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if debugLoggingRequested() {
		if _, ok := c.http.Transport.(*debugTransport); !ok {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
	}
	c.rc = resty.NewWithClient(c.http).
		SetBaseURL(c.baseURL).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return c, nil
}

func (c *Client) Conversations() store.Conversations { return conversations{c} }
func (c *Client) Messages() store.Messages           { return messages{c} }

// Whoami returns the user the API key resolves to.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	const op = "whoami"
	resp, err := c.do(ctx, op, true, func() (*resty.Response, error) {
		return c.rc.R().SetContext(ctx).Get("/api/me")
	})
	if err != nil {
		return "", err
	}
	var out struct {
		UserID string `json:"userId"`
	}
	if err := decode(op, resp, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", fmt.Errorf("%s: empty user id: %w", op, model.ErrUnauthorized)
	}
	return out.UserID, nil
}

// HealthPing implements health.HealthPinger against /api/health.
func (c *Client) HealthPing(ctx context.Context) error {
	const op = "health"
	resp, err := c.do(ctx, op, false, func() (*resty.Response, error) {
		return c.rc.R().SetContext(ctx).Get("/api/health")
	})
	if err != nil {
		return err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := decode(op, resp, &out); err != nil {
		return err
	}
	if out.Status != "UP" {
		return fmt.Errorf("journal service reports %s", out.Status)
	}
	return nil
}

// do sends one request, retrying recoverable failures when idempotent.
func (c *Client) do(ctx context.Context, op string, idempotent bool, send func() (*resty.Response, error)) (*resty.Response, error) {
	start := time.Now()
	var resp *resty.Response
	attempts := 0
	attempt := func() error {
		attempts++
		r, err := send()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return newNetworkError(op, err)
		}
		if !r.IsSuccess() {
			herr := newHTTPError(op, r.StatusCode(), r.String())
			if herr.Category == Irrecoverable {
				return backoff.Permanent(herr)
			}
			return herr
		}
		resp = r
		return nil
	}

	var err error
	if !idempotent || c.retry.maxAttempts <= 1 {
		err = attempt()
	} else {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.retry.base
		exp.Multiplier = 2
		exp.MaxInterval = c.retry.max
		exp.MaxElapsedTime = 0
		exp.Reset()
		err = backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.retry.maxAttempts-1)), ctx))
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	observe(op, start, attempts, err)
	return resp, err
}

func decode(op string, resp *resty.Response, out interface{}) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// --- Conversations ---
type conversations struct{ c *Client }

func (cs conversations) Create(ctx context.Context, mc *model.Conversation) (*model.Conversation, error) {
	const op = "create_conversation"
	resp, err := cs.c.do(ctx, op, false, func() (*resty.Response, error) {
		return cs.c.rc.R().SetContext(ctx).SetBody(map[string]string{"title": mc.Title}).Post("/api/conversations")
	})
	if err != nil {
		return nil, err
	}
	return decodeConversation(op, resp)
}

func (cs conversations) Get(ctx context.Context, _ string, conversationID string) (*model.Conversation, error) {
	const op = "get_conversation"
	resp, err := cs.c.do(ctx, op, true, func() (*resty.Response, error) {
		return cs.c.rc.R().SetContext(ctx).SetPathParam("id", conversationID).Get("/api/conversations/{id}")
	})
	if err != nil {
		return nil, err
	}
	return decodeConversation(op, resp)
}

func (cs conversations) List(ctx context.Context, _ string) ([]*model.Conversation, error) {
	const op = "list_conversations"
	resp, err := cs.c.do(ctx, op, true, func() (*resty.Response, error) {
		return cs.c.rc.R().SetContext(ctx).Get("/api/conversations")
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Conversations []*model.Conversation `json:"conversations"`
	}
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	for _, c := range out.Conversations {
		if err := model.ValidateConversation(c); err != nil {
			return nil, fmt.Errorf("%s: invalid record: %w", op, err)
		}
	}
	return out.Conversations, nil
}

func (cs conversations) Touch(ctx context.Context, _ string, conversationID string, at time.Time) error {
	const op = "touch_conversation"
	// moving updatedAt forward is idempotent, so retries are safe
	_, err := cs.c.do(ctx, op, true, func() (*resty.Response, error) {
		return cs.c.rc.R().SetContext(ctx).
			SetPathParam("id", conversationID).
			SetBody(map[string]time.Time{"updatedAt": at.UTC()}).
			Patch("/api/conversations/{id}")
	})
	return err
}

func (cs conversations) Delete(ctx context.Context, _ string, conversationID string) error {
	const op = "delete_conversation"
	_, err := cs.c.do(ctx, op, false, func() (*resty.Response, error) {
		return cs.c.rc.R().SetContext(ctx).SetPathParam("id", conversationID).Delete("/api/conversations/{id}")
	})
	return err
}

func decodeConversation(op string, resp *resty.Response) (*model.Conversation, error) {
	var c model.Conversation
	if err := decode(op, resp, &c); err != nil {
		return nil, err
	}
	if err := model.ValidateConversation(&c); err != nil {
		return nil, fmt.Errorf("%s: invalid record: %w", op, err)
	}
	return &c, nil
}

// --- Messages ---
type messages struct{ c *Client }

type createMessageRequest struct {
	Content         string          `json:"content"`
	Role            model.Role      `json:"role"`
	AudioURL        *string         `json:"audioUrl,omitempty"`
	EmotionAnalysis json.RawMessage `json:"emotionAnalysis,omitempty"`
}

func (ms messages) Create(ctx context.Context, _ string, m *model.Message) (*model.Message, error) {
	const op = "create_message"
	if err := model.ValidateNewMessage(m); err != nil {
		return nil, err
	}
	body := createMessageRequest{Content: m.Content, Role: m.Role, AudioURL: m.AudioURL, EmotionAnalysis: m.EmotionAnalysis}
	resp, err := ms.c.do(ctx, op, false, func() (*resty.Response, error) {
		return ms.c.rc.R().SetContext(ctx).
			SetPathParam("id", m.ConversationID).
			SetBody(body).
			Post("/api/conversations/{id}/messages")
	})
	if err != nil {
		return nil, err
	}
	var out model.Message
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	if err := model.ValidateMessage(&out); err != nil {
		return nil, fmt.Errorf("%s: invalid record: %w", op, err)
	}
	return &out, nil
}

func (ms messages) List(ctx context.Context, _ string, conversationID string) ([]*model.Message, error) {
	const op = "list_messages"
	resp, err := ms.c.do(ctx, op, true, func() (*resty.Response, error) {
		return ms.c.rc.R().SetContext(ctx).SetPathParam("id", conversationID).Get("/api/conversations/{id}/messages")
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Messages []*model.Message `json:"messages"`
	}
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	for _, m := range out.Messages {
		if err := model.ValidateMessage(m); err != nil {
			return nil, fmt.Errorf("%s: invalid record: %w", op, err)
		}
	}
	return out.Messages, nil
}
