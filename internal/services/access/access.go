package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.VerifiedIdentity, error)
}

type RoleProvider interface {
	Role(ctx context.Context, userID uuid.UUID) (string, error)
}

type Service struct {
	log      *slog.Logger
	verifier TokenVerifier
	roles    RoleProvider
}

// New returns a new instance of the access guard
func New(log *slog.Logger, verifier TokenVerifier, roles RoleProvider) *Service {
	return &Service{log: log, verifier: verifier, roles: roles}
}

// IsAdmin reports whether the subject's stored role is exactly "admin".
// Every lookup failure, not-found included, degrades to false: absence of
// privilege is the safe default and never an error.
func (s *Service) IsAdmin(ctx context.Context, subjectID uuid.UUID) bool {
	const op = "access.IsAdmin"
	log := s.log.With(slog.String("op", op))

	role, err := s.roles.Role(ctx, subjectID)
	if err != nil {
		log.Warn("role lookup failed, denying admin access", sl.Err(err))
		return false
	}

	return role == models.RoleAdmin
}

// Authorize verifies the bearer token, then checks the admin role. The two
// stages fail with distinct errors so the caller can map them to 401 and
// 403 while keeping client-facing messages opaque.
func (s *Service) Authorize(ctx context.Context, bearerToken string) (models.VerifiedIdentity, error) {
	const op = "access.Authorize"
	log := s.log.With(slog.String("op", op))

	identity, err := s.verifier.Verify(ctx, bearerToken)
	if err != nil {
		log.Warn("token verification failed", sl.Err(err))
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	if !s.IsAdmin(ctx, identity.SubjectID) {
		log.Warn("admin access denied", slog.String("subject", identity.SubjectID.String()))
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return identity, nil
}
