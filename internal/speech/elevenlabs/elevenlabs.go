// Package elevenlabs is a speech.Synthesizer backed by the ElevenLabs API.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"
	DefaultModelID = "eleven_monolingual_v1"
)

// Client calls the ElevenLabs text-to-speech API.
type Client struct {
	client  *resty.Client
	voiceID string
	modelID string
}

// New returns a client. Empty baseURL, voiceID or modelID fall back to the
// package defaults.
func New(apiKey, baseURL, voiceID, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if modelID == "" {
		modelID = DefaultModelID
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("xi-api-key", apiKey).
		SetTimeout(60 * time.Second)
	return &Client{client: c, voiceID: voiceID, modelID: modelID}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Voice is one entry of the account's voice library.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// TextToSpeech returns mp3 audio for text. An empty voiceID uses the client default.
func (c *Client) TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}
	if voiceID == "" {
		voiceID = c.voiceID
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetHeader("Content-Type", "application/json").
		SetPathParam("voice", voiceID).
		SetBody(&ttsRequest{
			Text:          text,
			ModelID:       c.modelID,
			VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
		}).
		Post("/v1/text-to-speech/{voice}")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("elevenlabs returned no audio")
	}
	return resp.Body(), nil
}

// Voices lists the voices available to the API key.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/v1/voices")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode(), resp.String())
	}
	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return out.Voices, nil
}

// AgentConversation is a conversational AI session opened for an agent.
type AgentConversation struct {
	ConversationID string `json:"conversation_id,omitempty"`
	AgentID        string `json:"agent_id,omitempty"`
	// Raw holds the full response body.
	Raw json.RawMessage `json:"-"`
}

// CreateConversation opens a conversational AI session. An empty agentID
// asks for the account's "default" agent.
func (c *Client) CreateConversation(ctx context.Context, agentID string) (*AgentConversation, error) {
	if agentID == "" {
		agentID = "default"
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"agent_id": agentID}).
		Post("/v1/convai/conversations")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode(), resp.String())
	}
	out := &AgentConversation{Raw: json.RawMessage(resp.Body())}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return out, nil
}

// HealthPing implements health.HealthPinger by listing voices.
func (c *Client) HealthPing(ctx context.Context) error {
	_, err := c.Voices(ctx)
	return err
}
