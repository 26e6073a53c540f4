package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/media"
	"github.com/Rrens/talent-chat/internal/speech"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Analyzer produces the character and profession text for a chat's answers
type Analyzer interface {
	Analyze(ctx context.Context, pairs []domain.AnswerPair) (string, error)
}

// Synthesizer reads text aloud
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*speech.Audio, error)
}

// MediaStore persists audio blobs
type MediaStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// SummaryTimeouts bounds each external call of the pipeline
type SummaryTimeouts struct {
	Analysis time.Duration
	Speech   time.Duration
}

// SummaryPipeline turns the answers of an open chat into a persisted summary
type SummaryPipeline struct {
	store       domain.SessionStore
	summaries   domain.SummaryRepository
	analyzer    Analyzer
	synthesizer Synthesizer
	media       MediaStore
	cfg         config.SessionConfig
	timeouts    SummaryTimeouts
}

// NewSummaryPipeline creates a new summary pipeline
func NewSummaryPipeline(
	store domain.SessionStore,
	summaries domain.SummaryRepository,
	analyzer Analyzer,
	synthesizer Synthesizer,
	media MediaStore,
	cfg config.SessionConfig,
	timeouts SummaryTimeouts,
) *SummaryPipeline {
	return &SummaryPipeline{
		store:       store,
		summaries:   summaries,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		media:       media,
		cfg:         cfg,
		timeouts:    timeouts,
	}
}

// Summarize analyzes the participant's open chat and stores the result with
// its audio. A chat generation is summarized once; later calls return the
// stored summary without calling the external services again.
func (p *SummaryPipeline) Summarize(ctx context.Context, participantID uuid.UUID) (*domain.Summary, error) {
	chat, err := p.store.GetOpenChat(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, domain.Validation("Chat does not exist")
	}

	existing, err := p.summaries.GetByChat(ctx, chat.ID, chat.Generation)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	pairs, err := p.store.ListAnswerPairs(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	text, err := p.analyze(ctx, pairs)
	if err != nil {
		return nil, domain.ExternalService("Analysis service failed", err)
	}

	audio, err := p.synthesize(ctx, text)
	if err != nil {
		return nil, domain.ExternalService("Speech service failed", err)
	}

	summaryID := uuid.New()
	key := media.SummaryAudioKey(chat.ID, chat.Generation, summaryID, audio.Format)
	ref, err := p.media.Save(ctx, key, bytes.NewReader(audio.Data), audio.ContentType)
	if err != nil {
		return nil, domain.ExternalService("Failed to store summary audio", err)
	}

	summary := &domain.Summary{
		ID:            summaryID,
		ChatID:        chat.ID,
		ParticipantID: participantID,
		Generation:    chat.Generation,
		Text:          text,
		AudioRef:      ref,
		CreatedAt:     time.Now(),
	}

	err = p.store.WithinTx(ctx, func(tx domain.SessionTx) error {
		locked, err := tx.LockChat(ctx, chat.ID, participantID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Generation != chat.Generation {
			return domain.Conflict("Chat changed while the summary was generated", nil)
		}
		if err := tx.CreateSummary(ctx, summary); err != nil {
			return err
		}
		if p.cfg.CloseOnSummary {
			return tx.CloseChat(ctx, locked)
		}
		return nil
	})
	if err != nil {
		// the blob is keyed by this attempt's summary id
		if delErr := p.media.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			log.Warn().Err(delErr).Str("ref", ref).Msg("Failed to remove orphaned summary audio")
		}
		if winner, getErr := p.summaries.GetByChat(ctx, chat.ID, chat.Generation); getErr == nil && winner != nil {
			return winner, nil
		}
		return nil, err
	}

	log.Info().
		Str("participant_id", participantID.String()).
		Str("chat_id", chat.ID.String()).
		Int("answers", len(pairs)).
		Msg("Chat summarized")

	return summary, nil
}

func (p *SummaryPipeline) analyze(ctx context.Context, pairs []domain.AnswerPair) (string, error) {
	if p.timeouts.Analysis > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.Analysis)
		defer cancel()
	}
	return p.analyzer.Analyze(ctx, pairs)
}

func (p *SummaryPipeline) synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	if p.timeouts.Speech > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.Speech)
		defer cancel()
	}
	return p.synthesizer.Synthesize(ctx, text)
}
