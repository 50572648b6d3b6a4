package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: gofakeit.Email()}

	token, err := NewToken(user, "secret", time.Hour)
	require.NoError(t, err)

	identity, err := NewVerifier("secret").Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, identity.SubjectID)
	assert.Equal(t, user.Email, identity.Email)
}

func TestVerify_WrongSecret(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: gofakeit.Email()}

	token, err := NewToken(user, "secret", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("other-secret").Verify(context.Background(), token)
	require.Error(t, err)
}

func TestVerify_ExpiredToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: gofakeit.Email()}

	token, err := NewToken(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("secret").Verify(context.Background(), token)
	require.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewVerifier("secret").Verify(context.Background(), "not-a-token")
	require.Error(t, err)
}
