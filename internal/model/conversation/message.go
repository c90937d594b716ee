package conversation

import "time"

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderTutor Sender = "tutor"
)

// Message is one entry in a session's conversation log. Text, sender and
// timestamp are immutable once appended; the feedback fields are attached
// later by targeted id update when the coach or image analysis returns.
type Message struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	Sender         Sender    `json:"sender"`
	CreatedAt      time.Time `json:"createdAt"`
	SpeechTip      string    `json:"speechTip,omitempty"`
	Score          *int      `json:"score,omitempty"`
	ImprovementTip string    `json:"improvementTip,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
}

// Critique carries the coach's feedback on a single user utterance.
// Score is a pronunciation/fluency grade on a 0-10 scale.
type Critique struct {
	SpeechTip      string `json:"speechTip,omitempty"`
	Score          int    `json:"score"`
	ImprovementTip string `json:"improvementTip,omitempty"`
}
