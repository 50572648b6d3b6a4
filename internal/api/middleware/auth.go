package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/response"
	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/access"
)

const (
	// Client-facing messages stay opaque on purpose: a caller cannot tell
	// whether the token or the role check failed.
	MsgUnauthorized = "Non autorisé"
	MsgForbidden    = "Accès refusé"
)

type AdminGuard interface {
	Authorize(ctx context.Context, bearerToken string) (models.VerifiedIdentity, error)
}

// AdminOnly gates a route behind bearer-token verification and the admin
// role check. The role lookup is never reached when the header is missing
// or malformed.
func AdminOnly(log *slog.Logger, guard AdminGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					log.Error("panic in admin guard", slog.Any("panic", p))
					response.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				}
			}()

			token, ok := bearerToken(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			identity, err := guard.Authorize(r.Context(), token)
			if err != nil {
				if errors.Is(err, access.ErrForbidden) {
					response.Error(w, http.StatusForbidden, MsgForbidden)
					return
				}

				log.Warn("admin authorization failed", sl.Err(err))
				response.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}

	return token, true
}
