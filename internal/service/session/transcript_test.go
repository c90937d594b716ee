package session

import (
	"testing"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
)

func TestFormatTranscript(t *testing.T) {
	messages := []conversation.Message{
		{Sender: conversation.SenderTutor, Text: "Hello! I'm John, your English Tutor. How can I help you today?"},
		{Sender: conversation.SenderUser, Text: "I would like to practice ordering food."},
		{Sender: conversation.SenderTutor, Text: "Great choice! Imagine we are in a restaurant."},
	}

	got := FormatTranscript("John", messages)
	want := "John: Hello! I'm John, your English Tutor. How can I help you today?\n\n" +
		"You: I would like to practice ordering food.\n\n" +
		"John: Great choice! Imagine we are in a restaurant."

	if got != want {
		t.Errorf("unexpected transcript:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTranscriptEmpty(t *testing.T) {
	if got := FormatTranscript("John", nil); got != "" {
		t.Errorf("empty log should render as empty text, got %q", got)
	}
}
