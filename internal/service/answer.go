package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/media"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// allowedAudioExts lists the recordings accepted as answers
var allowedAudioExts = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".wav":  true,
	".webm": true,
	".aac":  true,
}

// AudioUpload is a recorded answer received from a client
type AudioUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AnswerRecorder stores uploaded answer audio before recording the answer
type AnswerRecorder struct {
	engine *SessionEngine
	media  MediaStore
}

// NewAnswerRecorder creates a new answer recorder
func NewAnswerRecorder(engine *SessionEngine, media MediaStore) *AnswerRecorder {
	return &AnswerRecorder{engine: engine, media: media}
}

// Record saves the optional recording and records the answer. The stored
// blob is removed again when the answer is rejected.
func (r *AnswerRecorder) Record(ctx context.Context, chatID, participantID, questionID uuid.UUID, text string, audio *AudioUpload) (*domain.Answer, error) {
	if audio == nil {
		return r.engine.RecordAnswer(ctx, chatID, participantID, questionID, domain.AnswerContent{Text: text})
	}

	ext := strings.ToLower(filepath.Ext(audio.Filename))
	if !allowedAudioExts[ext] {
		return nil, domain.Validation("Unsupported audio format " + ext)
	}

	ref, err := r.media.Save(ctx, media.AnswerAudioKey(chatID, ext), audio.Body, audio.ContentType)
	if err != nil {
		return nil, domain.ExternalService("Failed to store answer audio", err)
	}

	answer, err := r.engine.RecordAnswer(ctx, chatID, participantID, questionID, domain.AnswerContent{Text: text, AudioRef: ref})
	if err != nil {
		if delErr := r.media.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			log.Warn().Err(delErr).Str("ref", ref).Msg("Failed to remove rejected answer audio")
		}
		return nil, err
	}
	return answer, nil
}
