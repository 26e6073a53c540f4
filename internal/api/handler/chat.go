package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/Rrens/talent-chat/internal/api/middleware"
	"github.com/Rrens/talent-chat/internal/api/response"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatHandler exposes the session engine
type ChatHandler struct {
	engine         *service.SessionEngine
	recorder       *service.AnswerRecorder
	maxUploadBytes int64
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *service.SessionEngine, recorder *service.AnswerRecorder, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{
		engine:         engine,
		recorder:       recorder,
		maxUploadBytes: maxUploadBytes,
	}
}

// Start begins or resets the participant's chat
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.engine.Start(r.Context(), participantID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

// Advance asks the next question
func (h *ChatHandler) Advance(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	result, err := h.engine.Advance(r.Context(), chatID, participantID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, result)
}

// Close ends the chat
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	if err := h.engine.Close(r.Context(), chatID, participantID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Answer records an answer given as JSON or as a multipart form carrying
// an answer_audio file
func (h *ChatHandler) Answer(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "questionID"))
	if err != nil {
		response.BadRequest(w, "invalid question ID")
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.answerMultipart(w, r, chatID, participantID, questionID)
		return
	}

	var input domain.AnswerContent
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	answer, err := h.recorder.Record(r.Context(), chatID, participantID, questionID, input.Text, nil)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, answer)
}

func (h *ChatHandler) answerMultipart(w http.ResponseWriter, r *http.Request, chatID, participantID, questionID uuid.UUID) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var audio *service.AudioUpload
	file, header, err := r.FormFile("answer_audio")
	switch {
	case err == nil:
		defer file.Close()
		audio = &service.AudioUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		response.BadRequest(w, "invalid answer_audio file")
		return
	}

	answer, err := h.recorder.Record(r.Context(), chatID, participantID, questionID, r.FormValue("answer"), audio)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, answer)
}
