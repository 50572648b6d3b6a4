package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/response"
	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	authservice "github.com/JanAndriessens/CalyClub-sub002/internal/services/auth"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/lockout"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, err error)
	RegisterNewUser(ctx context.Context, email, password string) (userID uuid.UUID, err error)
	DeleteUser(ctx context.Context, email string) error
}

type LockoutReader interface {
	LockoutRecord(ctx context.Context, identity string) (models.LockoutRecord, error)
}

type Handler struct {
	log       *slog.Logger
	validator *validator.Validate
	auth      AuthService
	lockouts  LockoutReader
}

func New(log *slog.Logger, auth AuthService, lockouts LockoutReader) *Handler {
	return &Handler{
		log:       log,
		validator: validator.New(),
		auth:      auth,
		lockouts:  lockouts,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Login"
	log := h.log.With(slog.String("op", op))

	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var locked *lockout.LockedError

		switch {
		case errors.As(err, &locked):
			response.Error(w, http.StatusTooManyRequests, fmt.Sprintf(MsgAccountLockedFmt, locked.RemainingMinutes))
		case errors.Is(err, lockout.ErrTooManyAttempts):
			response.Error(w, http.StatusTooManyRequests, MsgTooManyAttempts)
		case errors.Is(err, authservice.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, MsgInvalidCredentials)
		default:
			log.Error("login failed", sl.Err(err))
			response.Error(w, http.StatusInternalServerError, MsgInternal)
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Register"
	log := h.log.With(slog.String("op", op))

	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	userID, err := h.auth.RegisterNewUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrUserExists) {
			response.Error(w, http.StatusConflict, MsgUserExists)
			return
		}

		log.Error("registration failed", sl.Err(err))
		response.Error(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"userId": userID.String()})
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, MsgInvalidRequest)
		return credentialsRequest{}, false
	}

	if msg, ok := h.validateCredentials(req); !ok {
		response.Error(w, http.StatusBadRequest, msg)
		return credentialsRequest{}, false
	}

	return req, true
}
