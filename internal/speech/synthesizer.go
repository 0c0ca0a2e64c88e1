// Package speech turns assistant replies into audio that can be attached to a
// message as its audio URL.
package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Synthesizer renders text as encoded audio.
type Synthesizer interface {
	TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error)
}

// SaveAudio writes an mp3 payload under dir and returns its file:// URL.
func SaveAudio(dir string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "journal-audio")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(dir, uuid.New().String()+".mp3"))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return "file://" + filepath.ToSlash(path), nil
}
