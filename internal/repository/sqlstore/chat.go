package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
)

const chatColumns = `id, participant_id, question_count, generation, is_closed, created_at, updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SessionStore implements domain.SessionStore on MySQL or SQLite. Lock waits
// are bounded by the connection settings in the DSN (innodb_lock_wait_timeout
// on MySQL, busy_timeout on SQLite).
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new session store
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) WithinTx(ctx context.Context, fn func(tx domain.SessionTx) error) error {
	tx, err := s.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return mapTxError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(&sessionTx{db: s.db, q: tx}); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapTxError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (s *SessionStore) GetOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE participant_id = ? AND is_closed = ?`
	return loadChat(ctx, s.db.SQL, query, participantID, false)
}

func (s *SessionStore) ListAnswerPairs(ctx context.Context, chatID uuid.UUID) ([]domain.AnswerPair, error) {
	query := `
		SELECT a.question_id, q.question, a.answer
		FROM chat_answers ca
		INNER JOIN answers a ON a.id = ca.answer_id
		INNER JOIN questions q ON q.id = a.question_id
		WHERE ca.chat_id = ?
		ORDER BY ca.position
	`
	rows, err := s.db.SQL.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var pairs []domain.AnswerPair
	for rows.Next() {
		var p domain.AnswerPair
		if err := rows.Scan(&p.QuestionID, &p.QuestionText, &p.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

type sessionTx struct {
	db *DB
	q  querier
}

func (t *sessionTx) LockOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	var id uuid.UUID
	err := t.q.QueryRowContext(ctx,
		`SELECT id FROM participants WHERE id = ?`+t.db.forUpdate(), participantID).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to lock participant: %w", err)
	}

	query := `SELECT ` + chatColumns + ` FROM chats WHERE participant_id = ? AND is_closed = ?` + t.db.forUpdate()
	return loadChat(ctx, t.q, query, participantID, false)
}

func (t *sessionTx) LockChat(ctx context.Context, chatID, participantID uuid.UUID) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = ? AND participant_id = ? AND is_closed = ?` + t.db.forUpdate()
	return loadChat(ctx, t.q, query, chatID, participantID, false)
}

func (t *sessionTx) CreateChat(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (id, participant_id, question_count, generation, is_closed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := t.q.ExecContext(ctx, query,
		chat.ID, chat.ParticipantID, chat.QuestionCount, chat.Generation, chat.IsClosed, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (t *sessionTx) ResetChat(ctx context.Context, chat *domain.Chat) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM chat_questions WHERE chat_id = ?`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear chat questions: %w", err)
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM chat_answers WHERE chat_id = ?`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear chat answers: %w", err)
	}

	now := time.Now()
	_, err := t.q.ExecContext(ctx,
		`UPDATE chats SET question_count = 0, generation = generation + 1, updated_at = ? WHERE id = ?`,
		now, chat.ID)
	if err != nil {
		return fmt.Errorf("failed to reset chat: %w", err)
	}

	chat.QuestionIDs = nil
	chat.AnswerIDs = nil
	chat.QuestionCount = 0
	chat.Generation++
	chat.UpdatedAt = now
	return nil
}

func (t *sessionTx) AppendAskedQuestion(ctx context.Context, chat *domain.Chat, questionID uuid.UUID) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO chat_questions (chat_id, question_id, position) VALUES (?, ?, ?)`,
		chat.ID, questionID, len(chat.QuestionIDs))
	if err != nil {
		return fmt.Errorf("failed to append question: %w", err)
	}

	now := time.Now()
	_, err = t.q.ExecContext(ctx,
		`UPDATE chats SET question_count = question_count + 1, updated_at = ? WHERE id = ?`,
		now, chat.ID)
	if err != nil {
		return fmt.Errorf("failed to update question count: %w", err)
	}

	chat.QuestionIDs = append(chat.QuestionIDs, questionID)
	chat.QuestionCount++
	chat.UpdatedAt = now
	return nil
}

func (t *sessionTx) CloseChat(ctx context.Context, chat *domain.Chat) error {
	now := time.Now()
	if _, err := t.q.ExecContext(ctx, `UPDATE chats SET is_closed = ?, updated_at = ? WHERE id = ?`, true, now, chat.ID); err != nil {
		return fmt.Errorf("failed to close chat: %w", err)
	}
	chat.IsClosed = true
	chat.UpdatedAt = now
	return nil
}

func (t *sessionTx) CreateAnswer(ctx context.Context, a *domain.Answer) error {
	query := `
		INSERT INTO answers (id, participant_id, question_id, chat_id, answer, answer_audio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := t.q.ExecContext(ctx, query, a.ID, a.ParticipantID, a.QuestionID, a.ChatID, a.Text, a.AudioRef, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (t *sessionTx) AppendAnswer(ctx context.Context, chat *domain.Chat, answerID uuid.UUID) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO chat_answers (chat_id, answer_id, position) VALUES (?, ?, ?)`,
		chat.ID, answerID, len(chat.AnswerIDs))
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}

	now := time.Now()
	if _, err := t.q.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, now, chat.ID); err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	chat.AnswerIDs = append(chat.AnswerIDs, answerID)
	chat.UpdatedAt = now
	return nil
}

func (t *sessionTx) CreateSummary(ctx context.Context, s *domain.Summary) error {
	query := `
		INSERT INTO summaries (id, chat_id, participant_id, generation, summary, summary_audio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := t.q.ExecContext(ctx, query, s.ID, s.ChatID, s.ParticipantID, s.Generation, s.Text, s.AudioRef, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func loadChat(ctx context.Context, q querier, query string, args ...any) (*domain.Chat, error) {
	var c domain.Chat
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.ParticipantID, &c.QuestionCount, &c.Generation, &c.IsClosed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	if c.QuestionIDs, err = listIDs(ctx, q,
		`SELECT question_id FROM chat_questions WHERE chat_id = ? ORDER BY position`, c.ID); err != nil {
		return nil, fmt.Errorf("failed to list chat questions: %w", err)
	}
	if c.AnswerIDs, err = listIDs(ctx, q,
		`SELECT answer_id FROM chat_answers WHERE chat_id = ? ORDER BY position`, c.ID); err != nil {
		return nil, fmt.Errorf("failed to list chat answers: %w", err)
	}
	return &c, nil
}

func listIDs(ctx context.Context, q querier, query string, chatID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
