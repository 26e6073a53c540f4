package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// QuestionCache keeps a copy of the catalog outside the database
type QuestionCache interface {
	Get(ctx context.Context) ([]domain.Question, error)
	Set(ctx context.Context, questions []domain.Question) error
}

// QuestionPool draws questions uniformly at random from the catalog
type QuestionPool struct {
	repo  domain.QuestionRepository
	cache QuestionCache
	intn  func(n int) int
}

// NewQuestionPool creates a question pool. cache may be nil.
func NewQuestionPool(repo domain.QuestionRepository, cache QuestionCache) *QuestionPool {
	return &QuestionPool{
		repo:  repo,
		cache: cache,
		intn:  rand.IntN,
	}
}

// Catalog returns every question, from the cache when possible
func (p *QuestionPool) Catalog(ctx context.Context) ([]domain.Question, error) {
	if p.cache != nil {
		questions, err := p.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Question cache read failed")
		} else if len(questions) > 0 {
			return questions, nil
		}
	}

	questions, err := p.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	if p.cache != nil && len(questions) > 0 {
		if err := p.cache.Set(ctx, questions); err != nil {
			log.Warn().Err(err).Msg("Question cache write failed")
		}
	}
	return questions, nil
}

// Draw picks a question not in excluding. It fails with a pool exhausted
// error when every question is excluded.
func (p *QuestionPool) Draw(ctx context.Context, excluding []uuid.UUID) (*domain.Question, error) {
	catalog, err := p.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	skip := make(map[uuid.UUID]struct{}, len(excluding))
	for _, id := range excluding {
		skip[id] = struct{}{}
	}

	candidates := make([]domain.Question, 0, len(catalog))
	for _, q := range catalog {
		if _, ok := skip[q.ID]; !ok {
			candidates = append(candidates, q)
		}
	}

	if len(candidates) == 0 {
		return nil, domain.PoolExhausted("No more questions available")
	}

	q := candidates[p.intn(len(candidates))]
	return &q, nil
}
