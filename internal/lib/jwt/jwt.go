package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
)

var ErrInvalidToken = errors.New("invalid token")

// NewToken generates new JWT token and returns tokenString and err
func NewToken(user *models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = user.Email
	claims["uid"] = user.ID
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verifier checks HS256 tokens minted by NewToken. It implements the token
// verifier side of the access guard.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(_ context.Context, tokenString string) (models.VerifiedIdentity, error) {
	const op = "jwt.Verify"

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil {
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	subjectID, err := uuid.Parse(uid)
	if err != nil {
		return models.VerifiedIdentity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	email, _ := claims["email"].(string)

	return models.VerifiedIdentity{
		SubjectID: subjectID,
		Email:     email,
		Claims:    claims,
	}, nil
}
