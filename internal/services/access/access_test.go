package access

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identity models.VerifiedIdentity
	err      error
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (models.VerifiedIdentity, error) {
	return v.identity, v.err
}

type fakeRoles struct {
	roles map[uuid.UUID]string
	err   error
	calls int
}

func (r *fakeRoles) Role(_ context.Context, userID uuid.UUID) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	role, ok := r.roles[userID]
	if !ok {
		return "", storage.ErrUserNotFound
	}
	return role, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsAdmin(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()

	tests := []struct {
		name     string
		roles    *fakeRoles
		subject  uuid.UUID
		expected bool
	}{
		{
			name:     "admin role passes",
			roles:    &fakeRoles{roles: map[uuid.UUID]string{adminID: "admin"}},
			subject:  adminID,
			expected: true,
		},
		{
			name:     "member role denied",
			roles:    &fakeRoles{roles: map[uuid.UUID]string{memberID: "member"}},
			subject:  memberID,
			expected: false,
		},
		{
			name:     "moderator role denied",
			roles:    &fakeRoles{roles: map[uuid.UUID]string{memberID: "moderator"}},
			subject:  memberID,
			expected: false,
		},
		{
			name:     "unknown subject denied",
			roles:    &fakeRoles{roles: map[uuid.UUID]string{}},
			subject:  uuid.New(),
			expected: false,
		},
		{
			name:     "lookup failure denied",
			roles:    &fakeRoles{err: errors.New("store unavailable")},
			subject:  adminID,
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := New(discardLogger(), &fakeVerifier{}, test.roles)
			assert.Equal(t, test.expected, service.IsAdmin(context.Background(), test.subject))
		})
	}
}

func TestAuthorize_InvalidToken(t *testing.T) {
	roles := &fakeRoles{roles: map[uuid.UUID]string{}}
	service := New(discardLogger(), &fakeVerifier{err: errors.New("expired")}, roles)

	_, err := service.Authorize(context.Background(), "some-token")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, roles.calls, "role lookup must not run for an unverified token")
}

func TestAuthorize_NonAdmin(t *testing.T) {
	subject := uuid.New()
	verifier := &fakeVerifier{identity: models.VerifiedIdentity{SubjectID: subject}}
	roles := &fakeRoles{roles: map[uuid.UUID]string{subject: "member"}}
	service := New(discardLogger(), verifier, roles)

	_, err := service.Authorize(context.Background(), "some-token")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorize_Admin(t *testing.T) {
	subject := uuid.New()
	verifier := &fakeVerifier{identity: models.VerifiedIdentity{SubjectID: subject, Email: "admin@example.com"}}
	roles := &fakeRoles{roles: map[uuid.UUID]string{subject: "admin"}}
	service := New(discardLogger(), verifier, roles)

	identity, err := service.Authorize(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, subject, identity.SubjectID)
	assert.Equal(t, "admin@example.com", identity.Email)
}
