package service

import (
	"context"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// QuestionDrawer selects the next question for a chat
type QuestionDrawer interface {
	Draw(ctx context.Context, excluding []uuid.UUID) (*domain.Question, error)
}

// StartResult is the first question of a fresh or reset chat
type StartResult struct {
	Question *domain.Question `json:"result"`
	ChatID   uuid.UUID        `json:"chat"`
}

// AdvanceResult is the next question and whether the chat reached its limit
type AdvanceResult struct {
	Question *domain.Question `json:"result"`
	ChatID   uuid.UUID        `json:"chat"`
	End      bool             `json:"end"`
}

// SessionEngine runs the chat lifecycle. Every operation is one store
// transaction, so concurrent requests on the same chat serialize.
type SessionEngine struct {
	store domain.SessionStore
	pool  QuestionDrawer
	cfg   config.SessionConfig
}

// NewSessionEngine creates a new session engine
func NewSessionEngine(store domain.SessionStore, pool QuestionDrawer, cfg config.SessionConfig) *SessionEngine {
	return &SessionEngine{store: store, pool: pool, cfg: cfg}
}

// Start resets the participant's open chat, or creates one, and asks the first question
func (e *SessionEngine) Start(ctx context.Context, participantID uuid.UUID) (*StartResult, error) {
	var result StartResult

	err := e.store.WithinTx(ctx, func(tx domain.SessionTx) error {
		chat, err := tx.LockOpenChat(ctx, participantID)
		if err != nil {
			return err
		}

		if chat != nil {
			if err := tx.ResetChat(ctx, chat); err != nil {
				return err
			}
		} else {
			now := time.Now()
			chat = &domain.Chat{
				ID:            uuid.New(),
				ParticipantID: participantID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.CreateChat(ctx, chat); err != nil {
				return err
			}
		}

		question, err := e.pool.Draw(ctx, nil)
		if err != nil {
			return err
		}
		if err := tx.AppendAskedQuestion(ctx, chat, question.ID); err != nil {
			return err
		}

		result = StartResult{Question: question, ChatID: chat.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("participant_id", participantID.String()).
		Str("chat_id", result.ChatID.String()).
		Msg("Chat started")

	return &result, nil
}

// Advance asks the next question of an open chat
func (e *SessionEngine) Advance(ctx context.Context, chatID, participantID uuid.UUID) (*AdvanceResult, error) {
	var result AdvanceResult

	err := e.store.WithinTx(ctx, func(tx domain.SessionTx) error {
		chat, err := tx.LockChat(ctx, chatID, participantID)
		if err != nil {
			return err
		}
		if chat == nil {
			return domain.NotFound("Chat not found")
		}
		if chat.QuestionCount >= e.cfg.QuestionLimit {
			return domain.Validation("Question limit reached")
		}

		question, err := e.pool.Draw(ctx, chat.QuestionIDs)
		if err != nil {
			return err
		}
		if err := tx.AppendAskedQuestion(ctx, chat, question.ID); err != nil {
			return err
		}

		result = AdvanceResult{
			Question: question,
			ChatID:   chat.ID,
			End:      chat.QuestionCount == e.cfg.QuestionLimit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RecordAnswer stores an answer to a question asked in the chat
func (e *SessionEngine) RecordAnswer(ctx context.Context, chatID, participantID, questionID uuid.UUID, content domain.AnswerContent) (*domain.Answer, error) {
	var answer *domain.Answer

	err := e.store.WithinTx(ctx, func(tx domain.SessionTx) error {
		chat, err := tx.LockChat(ctx, chatID, participantID)
		if err != nil {
			return err
		}
		if chat == nil {
			return domain.Validation("Chat does not exist")
		}
		if !chat.HasAsked(questionID) {
			return domain.Validation("Question does not exist")
		}
		if content.Empty() {
			return domain.Validation("Answer must contain text or audio")
		}

		answer = &domain.Answer{
			ID:            uuid.New(),
			ParticipantID: participantID,
			QuestionID:    questionID,
			ChatID:        chat.ID,
			Text:          content.Text,
			AudioRef:      content.AudioRef,
			CreatedAt:     time.Now(),
		}
		if err := tx.CreateAnswer(ctx, answer); err != nil {
			return err
		}
		return tx.AppendAnswer(ctx, chat, answer.ID)
	})
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// Close ends an open chat. Closed chats accept no further operations.
func (e *SessionEngine) Close(ctx context.Context, chatID, participantID uuid.UUID) error {
	err := e.store.WithinTx(ctx, func(tx domain.SessionTx) error {
		chat, err := tx.LockChat(ctx, chatID, participantID)
		if err != nil {
			return err
		}
		if chat == nil {
			return domain.NotFound("Chat not found")
		}
		return tx.CloseChat(ctx, chat)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("participant_id", participantID.String()).
		Str("chat_id", chatID.String()).
		Msg("Chat closed")

	return nil
}
