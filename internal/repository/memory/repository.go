package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
)

// ParticipantRepository implements domain.ParticipantRepository
type ParticipantRepository struct {
	store *Store
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.state.participants {
		if existing.PhoneNumber == p.PhoneNumber {
			return fmt.Errorf("failed to create participant: phone number %s already registered", p.PhoneNumber)
		}
	}
	r.store.state.participants[p.ID] = *p
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.state.participants[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ParticipantRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.state.participants {
		if p.PhoneNumber == phoneNumber {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ParticipantRepository) PhoneNumberExists(ctx context.Context, phoneNumber string) (bool, error) {
	p, err := r.GetByPhoneNumber(ctx, phoneNumber)
	return p != nil, err
}

// QuestionRepository implements domain.QuestionRepository
type QuestionRepository struct {
	store *Store
}

func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.state.questions[q.ID] = *q
	return nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	q, ok := r.store.state.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	questions := make([]domain.Question, 0, len(r.store.state.questions))
	for _, q := range r.store.state.questions {
		questions = append(questions, q)
	}
	slices.SortFunc(questions, func(a, b domain.Question) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return questions, nil
}

// SummaryRepository implements domain.SummaryRepository
type SummaryRepository struct {
	store *Store
}

func (r *SummaryRepository) GetByChat(ctx context.Context, chatID uuid.UUID, generation int) (*domain.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.state.summaries[summaryKey{chatID: chatID, generation: generation}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
