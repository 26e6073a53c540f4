package domain

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a participant's reply to one asked question
type Answer struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"user"`
	QuestionID    uuid.UUID `json:"question"`
	ChatID        uuid.UUID `json:"chat"`
	Text          string    `json:"answer,omitempty"`
	AudioRef      string    `json:"answer_audio,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerContent is the payload recorded for a question
type AnswerContent struct {
	Text     string `json:"answer" validate:"max=10000"`
	AudioRef string `json:"answer_audio,omitempty"`
}

// Empty reports whether the content carries neither text nor audio
func (c AnswerContent) Empty() bool {
	return c.Text == "" && c.AudioRef == ""
}
