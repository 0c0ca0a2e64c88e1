package conversation

// EventKind names a local state change.
type EventKind string

const (
	EventConversationsLoaded  EventKind = "conversations_loaded"
	EventConversationCreated  EventKind = "conversation_created"
	EventConversationSelected EventKind = "conversation_selected"
	EventMessageAppended      EventKind = "message_appended"
	EventConversationDeleted  EventKind = "conversation_deleted"
	EventCleared              EventKind = "cleared"
)

// Event tells subscribers that the state changed. Consumers re-read the
// Store (or a Snapshot) to get the data.
type Event struct {
	Kind           EventKind
	ConversationID string
}

// Subscribe returns a channel of change notifications. Delivery is
// best-effort: a full buffer drops the event. The channel is closed by Close.
func (s *Store) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// publish must be called with s.mu held.
func (s *Store) publish(evt Event) {
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
