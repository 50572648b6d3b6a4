package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/response"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/risk"
)

const (
	RiskTokenHeader = "X-Recaptcha-Token"

	MsgMissingRiskToken   = "Token reCAPTCHA manquant"
	MsgVerificationFailed = "Échec de la vérification reCAPTCHA"
	MsgActionMismatch     = "Action reCAPTCHA invalide"
	MsgScoreTooLow        = "Score reCAPTCHA insuffisant"
)

type RiskGate interface {
	VerifyRiskToken(ctx context.Context, token, expectedAction string) error
}

// RequireRiskToken gates a route behind risk-token validation for the given
// action. No failure path lets the request through.
func RequireRiskToken(log *slog.Logger, gate RiskGate, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					log.Error("panic in risk gate", slog.Any("panic", p))
					response.Error(w, http.StatusBadRequest, MsgVerificationFailed)
				}
			}()

			token := r.Header.Get(RiskTokenHeader)
			if token == "" {
				response.Error(w, http.StatusBadRequest, MsgMissingRiskToken)
				return
			}

			if err := gate.VerifyRiskToken(r.Context(), token, action); err != nil {
				log.Warn("risk token rejected", slog.String("action", action), sl.Err(err))
				response.Error(w, http.StatusBadRequest, riskMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func riskMessage(err error) string {
	var lowScore *risk.LowScoreError

	switch {
	case errors.Is(err, risk.ErrActionMismatch):
		return MsgActionMismatch
	case errors.As(err, &lowScore):
		return MsgScoreTooLow
	default:
		return MsgVerificationFailed
	}
}
