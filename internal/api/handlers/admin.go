package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/response"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	authservice "github.com/JanAndriessens/CalyClub-sub002/internal/services/auth"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/gorilla/mux"
)

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.DeleteUser"
	log := h.log.With(slog.String("op", op))

	email := mux.Vars(r)["email"]
	if msg, ok := h.validateEmail(email); !ok {
		response.Error(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.auth.DeleteUser(r.Context(), email); err != nil {
		if errors.Is(err, authservice.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, MsgUserNotFound)
			return
		}

		log.Error("failed to delete user", sl.Err(err))
		response.Error(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type lockoutStatus struct {
	Locked      bool       `json:"locked"`
	Attempts    int        `json:"attempts"`
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

// LockoutStatus reports the raw lockout record for an identity. An absent
// record reads as an unlocked identity with zero attempts.
func (h *Handler) LockoutStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LockoutStatus"
	log := h.log.With(slog.String("op", op))

	email := mux.Vars(r)["email"]
	if msg, ok := h.validateEmail(email); !ok {
		response.Error(w, http.StatusBadRequest, msg)
		return
	}

	record, err := h.lockouts.LockoutRecord(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrLockoutNotFound) {
			response.JSON(w, http.StatusOK, lockoutStatus{})
			return
		}

		log.Error("failed to read lockout record", sl.Err(err))
		response.Error(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	status := lockoutStatus{
		Locked:   record.Locked(time.Now()),
		Attempts: record.Attempts,
	}
	if !record.LastAttempt.IsZero() {
		status.LastAttempt = &record.LastAttempt
	}
	if !record.LockedUntil.IsZero() {
		status.LockedUntil = &record.LockedUntil
	}

	response.JSON(w, http.StatusOK, status)
}
