package validate

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
)

// Title validates a conversation title:
// - required, at most 200 characters
// - no control characters
func Title(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(v) > maxTitleLen {
		return fmt.Errorf("title exceeds %d characters", maxTitleLen)
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("title contains control characters")
		}
	}
	return nil
}

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ID checks a path identifier is a UUID.
func ID(field, v string) error {
	if _, err := uuid.Parse(v); err != nil {
		return fmt.Errorf("invalid %s", field)
	}
	return nil
}

// JSON accepts any well-formed JSON document.
func JSON(field string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("%s must be valid JSON", field)
	}
	return nil
}

// AudioURL accepts absolute http(s), file and data URLs.
func AudioURL(v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	u, err := url.Parse(*v)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("audioUrl must be an absolute URL")
	}
	switch u.Scheme {
	case "http", "https", "file", "data":
		return nil
	}
	return fmt.Errorf("audioUrl scheme %q not supported", u.Scheme)
}

// -------- Request specific helpers ----------

func CreateConversation(title string) error {
	return Title(title)
}

func CreateMessage(content, role string, audioURL *string, emotion json.RawMessage) error {
	if err := NonEmpty("content", content); err != nil {
		return err
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return fmt.Errorf("content exceeds %d characters", maxContentLen)
	}
	if role != "user" && role != "assistant" {
		return fmt.Errorf("role must be user or assistant")
	}
	if err := AudioURL(audioURL); err != nil {
		return err
	}
	if len(emotion) > 0 && string(emotion) != "null" {
		if err := JSON("emotionAnalysis", emotion); err != nil {
			return err
		}
	}
	return nil
}
