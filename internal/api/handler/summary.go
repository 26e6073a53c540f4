package handler

import (
	"net/http"

	"github.com/Rrens/talent-chat/internal/api/middleware"
	"github.com/Rrens/talent-chat/internal/api/response"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/service"
)

// URLResolver turns a stored media reference into a client URL
type URLResolver interface {
	URL(ref string) string
}

// SummaryHandler exposes the summary pipeline
type SummaryHandler struct {
	pipeline *service.SummaryPipeline
	media    URLResolver
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(pipeline *service.SummaryPipeline, media URLResolver) *SummaryHandler {
	return &SummaryHandler{pipeline: pipeline, media: media}
}

type summaryView struct {
	*domain.Summary
	AudioURL string `json:"summary_audio_url"`
}

// Create summarizes the participant's open chat
func (h *SummaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	summary, err := h.pipeline.Summarize(r.Context(), participantID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, summaryView{
		Summary:  summary,
		AudioURL: h.media.URL(summary.AudioRef),
	})
}
