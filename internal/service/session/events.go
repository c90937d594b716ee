package session

import (
	"sync"
	"time"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
)

// EventType enumerates the session events pushed to UI subscribers.
type EventType string

const (
	EventMessageAppended EventType = "message"
	EventMessageEnriched EventType = "enriched"
	EventTurnPending     EventType = "turn-pending"
	EventTurnSettled     EventType = "turn-settled"
	EventPlayback        EventType = "playback"
	EventPlaybackAudio   EventType = "audio"
	EventInterimText     EventType = "interim"
)

// Event is one entry on a session's event stream.
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"sessionId"`
	Message   *conversation.Message `json:"message,omitempty"`
	TurnID    int64                 `json:"turnId,omitempty"`
	Playback  string                `json:"playback,omitempty"`
	StreamID  string                `json:"streamId,omitempty"`
	Audio     []byte                `json:"audio,omitempty"`
	Format    string                `json:"format,omitempty"`
	Text      string                `json:"text,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// broadcaster fans session events out to any number of subscribers. Slow
// subscribers drop events rather than block the pipeline.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe returns an event channel and a cancel function. The channel is
// closed on cancel.
func (b *broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 32)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *broadcaster) Publish(ev Event) {
	ev.Timestamp = time.Now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close drops all subscribers.
func (b *broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
