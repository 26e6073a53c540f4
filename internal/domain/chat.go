package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Chat is one interview session owned by a participant
type Chat struct {
	ID            uuid.UUID   `json:"id"`
	ParticipantID uuid.UUID   `json:"participant_id"`
	QuestionIDs   []uuid.UUID `json:"questions"`
	AnswerIDs     []uuid.UUID `json:"answers"`
	QuestionCount int         `json:"question_count"`
	Generation    int         `json:"generation"`
	IsClosed      bool        `json:"is_closed"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// HasAsked reports whether the question was asked in this chat
func (c *Chat) HasAsked(questionID uuid.UUID) bool {
	return slices.Contains(c.QuestionIDs, questionID)
}

// AnswerPair is one recorded answer handed to the analysis collaborator
type AnswerPair struct {
	QuestionID   uuid.UUID `json:"pk"`
	QuestionText string    `json:"question,omitempty"`
	Answer       string    `json:"answer"`
}

// SessionStore persists chats and gives atomic per-chat transactions.
//
// WithinTx runs fn in a single transaction; any error returned by fn rolls it
// back. Locks taken through SessionTx are held until fn returns.
type SessionStore interface {
	WithinTx(ctx context.Context, fn func(tx SessionTx) error) error

	// GetOpenChat returns the participant's open chat or nil.
	GetOpenChat(ctx context.Context, participantID uuid.UUID) (*Chat, error)
	// ListAnswerPairs returns the chat's answers in insertion order.
	ListAnswerPairs(ctx context.Context, chatID uuid.UUID) ([]AnswerPair, error)
}

// SessionTx is the set of mutations available inside SessionStore.WithinTx.
// Lock methods return nil, nil when nothing matches.
type SessionTx interface {
	LockOpenChat(ctx context.Context, participantID uuid.UUID) (*Chat, error)
	LockChat(ctx context.Context, chatID, participantID uuid.UUID) (*Chat, error)

	CreateChat(ctx context.Context, chat *Chat) error
	ResetChat(ctx context.Context, chat *Chat) error
	AppendAskedQuestion(ctx context.Context, chat *Chat, questionID uuid.UUID) error
	CloseChat(ctx context.Context, chat *Chat) error

	CreateAnswer(ctx context.Context, answer *Answer) error
	AppendAnswer(ctx context.Context, chat *Chat, answerID uuid.UUID) error

	CreateSummary(ctx context.Context, summary *Summary) error
}
