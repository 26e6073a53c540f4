package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSessionConfig = config.SessionConfig{QuestionLimit: 5, DefaultAge: 6}

type sessionFixture struct {
	store         *memory.Store
	engine        *SessionEngine
	participantID uuid.UUID
	questions     []domain.Question
}

func newSessionFixture(t *testing.T, catalogSize int, cfg config.SessionConfig) *sessionFixture {
	t.Helper()

	store := memory.New()
	ctx := context.Background()
	base := time.Now()

	questions := make([]domain.Question, catalogSize)
	for i := range questions {
		questions[i] = domain.Question{
			ID:        uuid.New(),
			Age:       6,
			Text:      "question " + string(rune('A'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Questions().Create(ctx, &questions[i]))
	}

	pool := NewQuestionPool(store.Questions(), nil)
	return &sessionFixture{
		store:         store,
		engine:        NewSessionEngine(store, pool, cfg),
		participantID: uuid.New(),
		questions:     questions,
	}
}

func (f *sessionFixture) openChat(t *testing.T) *domain.Chat {
	t.Helper()
	chat, err := f.store.GetOpenChat(context.Background(), f.participantID)
	require.NoError(t, err)
	return chat
}

func TestSessionEngine_FullInterview(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)
	require.NotNil(t, started.Question)

	asked := []uuid.UUID{started.Question.ID}
	_, err = f.engine.RecordAnswer(ctx, started.ChatID, f.participantID, started.Question.ID, domain.AnswerContent{Text: "answer 1"})
	require.NoError(t, err)

	wantEnd := []bool{false, false, false, true}
	for i, end := range wantEnd {
		next, err := f.engine.Advance(ctx, started.ChatID, f.participantID)
		require.NoError(t, err)
		assert.Equal(t, started.ChatID, next.ChatID)
		assert.Equal(t, end, next.End, "advance %d", i+1)
		assert.NotContains(t, asked, next.Question.ID)
		asked = append(asked, next.Question.ID)

		chat := f.openChat(t)
		assert.Equal(t, i+2, chat.QuestionCount)

		_, err = f.engine.RecordAnswer(ctx, started.ChatID, f.participantID, next.Question.ID, domain.AnswerContent{Text: "answer"})
		require.NoError(t, err)
	}

	chat := f.openChat(t)
	assert.Equal(t, asked, chat.QuestionIDs)
	assert.Len(t, chat.AnswerIDs, 5)

	pairs, err := f.store.ListAnswerPairs(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, pairs, 5)
	for i, pair := range pairs {
		assert.Equal(t, asked[i], pair.QuestionID)
	}
	assert.Equal(t, "answer 1", pairs[0].Answer)

	_, err = f.engine.Advance(ctx, started.ChatID, f.participantID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 5, f.openChat(t).QuestionCount)
}

func TestSessionEngine_PoolExhaustedBeforeLimit(t *testing.T) {
	f := newSessionFixture(t, 3, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		next, err := f.engine.Advance(ctx, started.ChatID, f.participantID)
		require.NoError(t, err)
		assert.False(t, next.End)
	}

	_, err = f.engine.Advance(ctx, started.ChatID, f.participantID)
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)

	chat := f.openChat(t)
	assert.Equal(t, 3, chat.QuestionCount)
	assert.Len(t, chat.QuestionIDs, 3)
}

func TestSessionEngine_StartResetsOpenChat(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	first, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)
	_, err = f.engine.RecordAnswer(ctx, first.ChatID, f.participantID, first.Question.ID, domain.AnswerContent{Text: "a"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := f.engine.Advance(ctx, first.ChatID, f.participantID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.openChat(t).QuestionCount)

	second, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)
	assert.Equal(t, first.ChatID, second.ChatID)

	chat := f.openChat(t)
	assert.Equal(t, 1, chat.QuestionCount)
	assert.Equal(t, []uuid.UUID{second.Question.ID}, chat.QuestionIDs)
	assert.Empty(t, chat.AnswerIDs)
	assert.Equal(t, 1, chat.Generation)

	pairs, err := f.store.ListAnswerPairs(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestSessionEngine_StartWithEmptyCatalog(t *testing.T) {
	f := newSessionFixture(t, 0, testSessionConfig)

	_, err := f.engine.Start(context.Background(), f.participantID)
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.Nil(t, f.openChat(t))
}

func TestSessionEngine_AdvanceUnknownChat(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	tests := []struct {
		name          string
		chatID        uuid.UUID
		participantID uuid.UUID
	}{
		{"unknown chat", uuid.New(), f.participantID},
		{"other participant", started.ChatID, uuid.New()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Advance(ctx, tt.chatID, tt.participantID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
	assert.Equal(t, 1, f.openChat(t).QuestionCount)
}

func TestSessionEngine_ConcurrentAdvance(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	const workers = 2
	var wg sync.WaitGroup
	results := make([]*AdvanceResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.engine.Advance(ctx, started.ChatID, f.participantID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}
	assert.NotEqual(t, results[0].Question.ID, results[1].Question.ID)

	chat := f.openChat(t)
	assert.Equal(t, 3, chat.QuestionCount)
	assert.Len(t, chat.QuestionIDs, 3)
	assert.Contains(t, chat.QuestionIDs, results[0].Question.ID)
	assert.Contains(t, chat.QuestionIDs, results[1].Question.ID)
}

func TestSessionEngine_RecordAnswerValidation(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	var notAsked uuid.UUID
	for _, q := range f.questions {
		if q.ID != started.Question.ID {
			notAsked = q.ID
			break
		}
	}

	tests := []struct {
		name       string
		chatID     uuid.UUID
		questionID uuid.UUID
		content    domain.AnswerContent
		message    string
	}{
		{"unknown chat", uuid.New(), started.Question.ID, domain.AnswerContent{Text: "a"}, "Chat does not exist"},
		{"question not asked", started.ChatID, notAsked, domain.AnswerContent{Text: "a"}, "Question does not exist"},
		{"empty answer", started.ChatID, started.Question.ID, domain.AnswerContent{}, "Answer must contain text or audio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := f.engine.RecordAnswer(ctx, tt.chatID, f.participantID, tt.questionID, tt.content)
			assert.Nil(t, answer)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
	assert.Empty(t, f.openChat(t).AnswerIDs)
}

func TestSessionEngine_RecordAnswerTwice(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	first, err := f.engine.RecordAnswer(ctx, started.ChatID, f.participantID, started.Question.ID, domain.AnswerContent{Text: "nurse"})
	require.NoError(t, err)
	second, err := f.engine.RecordAnswer(ctx, started.ChatID, f.participantID, started.Question.ID, domain.AnswerContent{AudioRef: "answers/audio/x.mp3"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, started.ChatID, second.ChatID)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, f.openChat(t).AnswerIDs)
}

func TestSessionEngine_Close(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	require.NoError(t, f.engine.Close(ctx, started.ChatID, f.participantID))
	assert.Nil(t, f.openChat(t))

	assert.ErrorIs(t, f.engine.Close(ctx, started.ChatID, f.participantID), domain.ErrNotFound)

	_, err = f.engine.Advance(ctx, started.ChatID, f.participantID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.RecordAnswer(ctx, started.ChatID, f.participantID, started.Question.ID, domain.AnswerContent{Text: "a"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	restarted, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)
	assert.NotEqual(t, started.ChatID, restarted.ChatID)
	assert.Equal(t, 0, f.openChat(t).Generation)
}
