package session

import (
	"fmt"
	"strings"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
)

// FormatTranscript renders a message log as downloadable plain text.
// Pure function over the messages; no network, no session state.
func FormatTranscript(tutorName string, messages []conversation.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		speaker := tutorName
		if msg.Sender == conversation.SenderUser {
			speaker = "You"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, msg.Text))
	}
	return strings.Join(lines, "\n\n")
}

// Transcript renders this session's current log as plain text.
func (s *Session) Transcript() string {
	s.mu.Lock()
	messages := make([]conversation.Message, len(s.messages))
	copy(messages, s.messages)
	s.mu.Unlock()

	return FormatTranscript(s.persona.Name, messages)
}
