// Package export writes conversation logs as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

var header = []string{"conversation_id", "conversation_title", "message_id", "timestamp", "role", "content", "audio_url"}

// Thread is one conversation together with its messages.
type Thread struct {
	Conversation model.Conversation
	Messages     []model.Message
}

// WriteCSV writes one row per message, threads in the order given. Timestamps
// are RFC 3339 in UTC.
func WriteCSV(w io.Writer, threads []Thread) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, th := range threads {
		for _, m := range th.Messages {
			audio := ""
			if m.AudioURL != nil {
				audio = *m.AudioURL
			}
			row := []string{
				th.Conversation.ID,
				th.Conversation.Title,
				m.ID,
				m.Timestamp.UTC().Format(time.RFC3339Nano),
				string(m.Role),
				m.Content,
				audio,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write message %s: %w", m.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
