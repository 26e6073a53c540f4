package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

const chatColumns = `id, participant_id, question_count, generation, is_closed, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore implements domain.SessionStore on PostgreSQL.
// Engine operations lock the chat row with SELECT ... FOR UPDATE; a lock that
// cannot be taken within lockTimeout surfaces as a conflict.
type SessionStore struct {
	db          *DB
	lockTimeout time.Duration
}

// NewSessionStore creates a new session store
func NewSessionStore(db *DB, lockTimeout time.Duration) *SessionStore {
	return &SessionStore{db: db, lockTimeout: lockTimeout}
}

// WithinTx runs fn inside one transaction
func (s *SessionStore) WithinTx(ctx context.Context, fn func(tx domain.SessionTx) error) error {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err := fn(&sessionTx{q: tx}); err != nil {
		return mapTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapTxError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// GetOpenChat returns the participant's open chat without locking it
func (s *SessionStore) GetOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE participant_id = $1 AND NOT is_closed`
	return loadChat(ctx, s.db.Pool, query, participantID)
}

// ListAnswerPairs returns the chat's answers in the order they were recorded
func (s *SessionStore) ListAnswerPairs(ctx context.Context, chatID uuid.UUID) ([]domain.AnswerPair, error) {
	query := `
		SELECT a.question_id, q.question, a.answer
		FROM chat_answers ca
		INNER JOIN answers a ON a.id = ca.answer_id
		INNER JOIN questions q ON q.id = a.question_id
		WHERE ca.chat_id = $1
		ORDER BY ca.position
	`
	rows, err := s.db.Pool.Query(ctx, query, chatID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}
	return pairs, nil
}

type sessionTx struct {
	q querier
}

func (t *sessionTx) LockOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	// Lock the participant first so two concurrent starts cannot both create a chat.
	var id uuid.UUID
	err := t.q.QueryRow(ctx, `SELECT id FROM participants WHERE id = $1 FOR UPDATE`, participantID).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to lock participant: %w", err)
	}

	query := `SELECT ` + chatColumns + ` FROM chats WHERE participant_id = $1 AND NOT is_closed FOR UPDATE`
	return loadChat(ctx, t.q, query, participantID)
}

func (t *sessionTx) LockChat(ctx context.Context, chatID, participantID uuid.UUID) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1 AND participant_id = $2 AND NOT is_closed FOR UPDATE`
	return loadChat(ctx, t.q, query, chatID, participantID)
}

func (t *sessionTx) CreateChat(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (id, participant_id, question_count, generation, is_closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.q.Exec(ctx, query,
		chat.ID,
		chat.ParticipantID,
		chat.QuestionCount,
		chat.Generation,
		chat.IsClosed,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (t *sessionTx) ResetChat(ctx context.Context, chat *domain.Chat) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM chat_questions WHERE chat_id = $1`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear chat questions: %w", err)
	}
	if _, err := t.q.Exec(ctx, `DELETE FROM chat_answers WHERE chat_id = $1`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear chat answers: %w", err)
	}

	query := `
		UPDATE chats
		SET question_count = 0, generation = generation + 1, updated_at = $2
		WHERE id = $1
		RETURNING generation, updated_at
	`
	if err := t.q.QueryRow(ctx, query, chat.ID, time.Now()).Scan(&chat.Generation, &chat.UpdatedAt); err != nil {
		return fmt.Errorf("failed to reset chat: %w", err)
	}

	chat.QuestionIDs = nil
	chat.AnswerIDs = nil
	chat.QuestionCount = 0
	return nil
}

func (t *sessionTx) AppendAskedQuestion(ctx context.Context, chat *domain.Chat, questionID uuid.UUID) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO chat_questions (chat_id, question_id, position) VALUES ($1, $2, $3)`,
		chat.ID, questionID, len(chat.QuestionIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to append question: %w", err)
	}

	query := `
		UPDATE chats
		SET question_count = question_count + 1, updated_at = $2
		WHERE id = $1
		RETURNING question_count, updated_at
	`
	if err := t.q.QueryRow(ctx, query, chat.ID, time.Now()).Scan(&chat.QuestionCount, &chat.UpdatedAt); err != nil {
		return fmt.Errorf("failed to update question count: %w", err)
	}

	chat.QuestionIDs = append(chat.QuestionIDs, questionID)
	return nil
}

func (t *sessionTx) CloseChat(ctx context.Context, chat *domain.Chat) error {
	query := `UPDATE chats SET is_closed = TRUE, updated_at = $2 WHERE id = $1 RETURNING updated_at`
	if err := t.q.QueryRow(ctx, query, chat.ID, time.Now()).Scan(&chat.UpdatedAt); err != nil {
		return fmt.Errorf("failed to close chat: %w", err)
	}
	chat.IsClosed = true
	return nil
}

func (t *sessionTx) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	query := `
		INSERT INTO answers (id, participant_id, question_id, chat_id, answer, answer_audio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.q.Exec(ctx, query,
		answer.ID,
		answer.ParticipantID,
		answer.QuestionID,
		answer.ChatID,
		answer.Text,
		answer.AudioRef,
		answer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (t *sessionTx) AppendAnswer(ctx context.Context, chat *domain.Chat, answerID uuid.UUID) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO chat_answers (chat_id, answer_id, position) VALUES ($1, $2, $3)`,
		chat.ID, answerID, len(chat.AnswerIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}
	if _, err := t.q.Exec(ctx, `UPDATE chats SET updated_at = $2 WHERE id = $1`, chat.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}

	chat.AnswerIDs = append(chat.AnswerIDs, answerID)
	return nil
}

func (t *sessionTx) CreateSummary(ctx context.Context, s *domain.Summary) error {
	query := `
		INSERT INTO summaries (id, chat_id, participant_id, generation, summary, summary_audio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.q.Exec(ctx, query,
		s.ID,
		s.ChatID,
		s.ParticipantID,
		s.Generation,
		s.Text,
		s.AudioRef,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

// loadChat scans one chat row and its ordered question and answer ids
func loadChat(ctx context.Context, q querier, query string, args ...any) (*domain.Chat, error) {
	var c domain.Chat
	err := q.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.ParticipantID,
		&c.QuestionCount,
		&c.Generation,
		&c.IsClosed,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	c.QuestionIDs, err = listIDs(ctx, q,
		`SELECT question_id FROM chat_questions WHERE chat_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat questions: %w", err)
	}
	c.AnswerIDs, err = listIDs(ctx, q,
		`SELECT answer_id FROM chat_answers WHERE chat_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat answers: %w", err)
	}
	return &c, nil
}

func listIDs(ctx context.Context, q querier, query string, chatID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, query, chatID)
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

// mapTxError turns lock and uniqueness failures into domain conflicts.
// Errors that already carry a domain code pass through untouched.
func mapTxError(err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
			return domain.Conflict("chat is being modified by another request", err)
		case pgUniqueViolation:
			return domain.Conflict("concurrent update of the same chat", err)
		}
	}
	return err
}
