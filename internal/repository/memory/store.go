// Package memory keeps every repository in process memory. It backs local
// runs with database.driver=memory and the service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
)

type state struct {
	participants map[uuid.UUID]domain.Participant
	questions    map[uuid.UUID]domain.Question
	chats        map[uuid.UUID]domain.Chat
	answers      map[uuid.UUID]domain.Answer
	summaries    map[summaryKey]domain.Summary
}

type summaryKey struct {
	chatID     uuid.UUID
	generation int
}

func newState() *state {
	return &state{
		participants: make(map[uuid.UUID]domain.Participant),
		questions:    make(map[uuid.UUID]domain.Question),
		chats:        make(map[uuid.UUID]domain.Chat),
		answers:      make(map[uuid.UUID]domain.Answer),
		summaries:    make(map[summaryKey]domain.Summary),
	}
}

// cloneSession copies the maps a transaction may write so a failed one can be
// discarded. Answers and summaries are immutable and share their values.
func (s *state) cloneSession() *state {
	c := &state{
		chats:     make(map[uuid.UUID]domain.Chat, len(s.chats)),
		answers:   maps.Clone(s.answers),
		summaries: maps.Clone(s.summaries),
	}
	for id, chat := range s.chats {
		c.chats[id] = copyChat(chat)
	}
	return c
}

func copyChat(c domain.Chat) domain.Chat {
	c.QuestionIDs = slices.Clone(c.QuestionIDs)
	c.AnswerIDs = slices.Clone(c.AnswerIDs)
	return c
}

// Store implements domain.SessionStore and hands out the other repositories
// over the same data. Transactions are serialized by txMu; mu guards state.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
}

// New creates an empty store
func New() *Store {
	return &Store{state: newState()}
}

// Participants returns the participant repository
func (s *Store) Participants() *ParticipantRepository {
	return &ParticipantRepository{store: s}
}

// Questions returns the question repository
func (s *Store) Questions() *QuestionRepository {
	return &QuestionRepository{store: s}
}

// Summaries returns the summary repository
func (s *Store) Summaries() *SummaryRepository {
	return &SummaryRepository{store: s}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.SessionTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.state.cloneSession()
	s.mu.RUnlock()

	if err := fn(&sessionTx{state: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.chats = work.chats
	s.state.answers = work.answers
	s.state.summaries = work.summaries
	s.mu.Unlock()
	return nil
}

func (s *Store) GetOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.openChat(participantID), nil
}

func (s *Store) ListAnswerPairs(ctx context.Context, chatID uuid.UUID) ([]domain.AnswerPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.state.chats[chatID]
	if !ok {
		return nil, nil
	}

	pairs := make([]domain.AnswerPair, 0, len(chat.AnswerIDs))
	for _, id := range chat.AnswerIDs {
		a := s.state.answers[id]
		pairs = append(pairs, domain.AnswerPair{
			QuestionID:   a.QuestionID,
			QuestionText: s.state.questions[a.QuestionID].Text,
			Answer:       a.Text,
		})
	}
	return pairs, nil
}

func (s *state) openChat(participantID uuid.UUID) *domain.Chat {
	for _, c := range s.chats {
		if c.ParticipantID == participantID && !c.IsClosed {
			chat := copyChat(c)
			return &chat
		}
	}
	return nil
}

type sessionTx struct {
	state *state
}

func (t *sessionTx) LockOpenChat(ctx context.Context, participantID uuid.UUID) (*domain.Chat, error) {
	return t.state.openChat(participantID), nil
}

func (t *sessionTx) LockChat(ctx context.Context, chatID, participantID uuid.UUID) (*domain.Chat, error) {
	c, ok := t.state.chats[chatID]
	if !ok || c.ParticipantID != participantID || c.IsClosed {
		return nil, nil
	}
	chat := copyChat(c)
	return &chat, nil
}

func (t *sessionTx) CreateChat(ctx context.Context, chat *domain.Chat) error {
	if t.state.openChat(chat.ParticipantID) != nil {
		return domain.Conflict("participant already has an open chat", nil)
	}
	t.state.chats[chat.ID] = copyChat(*chat)
	return nil
}

func (t *sessionTx) ResetChat(ctx context.Context, chat *domain.Chat) error {
	chat.QuestionIDs = nil
	chat.AnswerIDs = nil
	chat.QuestionCount = 0
	chat.Generation++
	chat.UpdatedAt = time.Now()
	return t.save(chat)
}

func (t *sessionTx) AppendAskedQuestion(ctx context.Context, chat *domain.Chat, questionID uuid.UUID) error {
	if chat.HasAsked(questionID) {
		return domain.Conflict("question already asked in this chat", nil)
	}
	chat.QuestionIDs = append(chat.QuestionIDs, questionID)
	chat.QuestionCount++
	chat.UpdatedAt = time.Now()
	return t.save(chat)
}

func (t *sessionTx) CloseChat(ctx context.Context, chat *domain.Chat) error {
	chat.IsClosed = true
	chat.UpdatedAt = time.Now()
	return t.save(chat)
}

func (t *sessionTx) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	t.state.answers[answer.ID] = *answer
	return nil
}

func (t *sessionTx) AppendAnswer(ctx context.Context, chat *domain.Chat, answerID uuid.UUID) error {
	chat.AnswerIDs = append(chat.AnswerIDs, answerID)
	chat.UpdatedAt = time.Now()
	return t.save(chat)
}

func (t *sessionTx) CreateSummary(ctx context.Context, summary *domain.Summary) error {
	key := summaryKey{chatID: summary.ChatID, generation: summary.Generation}
	if _, ok := t.state.summaries[key]; ok {
		return domain.Conflict("summary already exists for this chat", nil)
	}
	t.state.summaries[key] = *summary
	return nil
}

func (t *sessionTx) save(chat *domain.Chat) error {
	if _, ok := t.state.chats[chat.ID]; !ok {
		return domain.NotFound("chat not found")
	}
	t.state.chats[chat.ID] = copyChat(*chat)
	return nil
}
