package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/talent-chat/internal/api/middleware"
	"github.com/Rrens/talent-chat/internal/api/response"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// validationErrors turns validator output into a field to message map
func validationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			fields[field] = "field is required"
		case "oneof":
			fields[field] = "must be one of " + e.Param()
		case "min":
			fields[field] = "must be at least " + e.Param()
		case "max":
			fields[field] = "must be at most " + e.Param()
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	return fields
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles participant registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.ParticipantCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	participant, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrPhoneNumberTaken) {
			response.Conflict(w, err.Error())
			return
		}
		log.Error().Err(err).Msg("Registration failed")
		response.InternalError(w, "failed to register")
		return
	}

	response.Created(w, participant)
}

// Login handles participant login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.ParticipantLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		log.Error().Err(err).Msg("Login failed")
		response.InternalError(w, "failed to login")
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.Unauthorized(w, service.ErrInvalidToken.Error())
		return
	}

	response.OK(w, tokens)
}

// Me returns the current authenticated participant
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.GetParticipantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	participant, err := h.authService.GetParticipant(r.Context(), participantID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	if participant == nil {
		response.Unauthorized(w, "participant not found")
		return
	}

	response.OK(w, participant)
}
