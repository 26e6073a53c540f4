package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnswerRecorder_TextOnly(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	media := new(MockMediaStore)
	recorder := NewAnswerRecorder(f.engine, media)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	answer, err := recorder.Record(ctx, started.ChatID, f.participantID, started.Question.ID, "a pilot", nil)
	require.NoError(t, err)
	assert.Equal(t, "a pilot", answer.Text)
	assert.Empty(t, answer.AudioRef)
	media.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerRecorder_WithAudio(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	media := new(MockMediaStore)
	recorder := NewAnswerRecorder(f.engine, media)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	media.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "answers/audio/"+started.ChatID.String()) && strings.HasSuffix(key, ".m4a")
	}), mock.Anything, "audio/mp4").Return("answers/audio/recording.m4a", nil)

	answer, err := recorder.Record(ctx, started.ChatID, f.participantID, started.Question.ID, "", &AudioUpload{
		Filename:    "Recording.M4A",
		ContentType: "audio/mp4",
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "answers/audio/recording.m4a", answer.AudioRef)
	media.AssertExpectations(t)
}

func TestAnswerRecorder_RejectedAnswerRemovesAudio(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	media := new(MockMediaStore)
	recorder := NewAnswerRecorder(f.engine, media)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	media.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("answers/audio/orphan.mp3", nil)
	media.On("Delete", mock.Anything, "answers/audio/orphan.mp3").Return(errors.New("already gone")).Once()

	_, err = recorder.Record(ctx, started.ChatID, f.participantID, uuid.New(), "", &AudioUpload{
		Filename: "answer.mp3",
		Body:     strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	media.AssertExpectations(t)
}

func TestAnswerRecorder_UnsupportedFormat(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	media := new(MockMediaStore)
	recorder := NewAnswerRecorder(f.engine, media)

	_, err := recorder.Record(context.Background(), uuid.New(), f.participantID, uuid.New(), "", &AudioUpload{
		Filename: "answer.exe",
		Body:     strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	media.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerRecorder_StorageFailure(t *testing.T) {
	f := newSessionFixture(t, 6, testSessionConfig)
	media := new(MockMediaStore)
	recorder := NewAnswerRecorder(f.engine, media)
	ctx := context.Background()

	started, err := f.engine.Start(ctx, f.participantID)
	require.NoError(t, err)

	media.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	_, err = recorder.Record(ctx, started.ChatID, f.participantID, started.Question.ID, "", &AudioUpload{
		Filename: "answer.wav",
		Body:     strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Empty(t, f.openChat(t).AnswerIDs)
}
