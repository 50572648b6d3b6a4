package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/jwt"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/lockout"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/google/uuid"
)

type Auth struct {
	log          *slog.Logger
	userSaver    UserSaver
	userProvider UserProvider
	lockouts     LockoutTracker
	tokenSecret  string
	tokenTTL     time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, passwordHash []byte) (user models.User, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	DeleteUser(ctx context.Context, email string) error
}

type LockoutTracker interface {
	CheckLockout(ctx context.Context, identity string) error
	RecordFailedAttempt(ctx context.Context, identity string) error
	ResetFailedAttempts(ctx context.Context, identity string) error
}

// New returns a new instance of the Auth service
func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	lockouts LockoutTracker,
	tokenSecret string,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:          log,
		userSaver:    userSaver,
		userProvider: userProvider,
		lockouts:     lockouts,
		tokenSecret:  tokenSecret,
		tokenTTL:     tokenTTL,
	}
}

// Login checks the lockout state before touching credentials, records a
// failed attempt on any credential failure and resets the counter on
// success. Lockout errors pass through unwrapped for the transport layer
// to translate.
func (a *Auth) Login(ctx context.Context, email string, password string) (string, error) {
	const op = "auth.Login"
	log := a.log.With(slog.String("op", op))
	log.Info("login user")

	if err := a.lockouts.CheckLockout(ctx, email); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.userProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return "", a.failAttempt(ctx, op, email)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Warn("invalid credentials", sl.Err(err))
		return "", a.failAttempt(ctx, op, email)
	}

	if err := a.lockouts.ResetFailedAttempts(ctx, email); err != nil {
		// the login itself succeeded; a failed reset only delays the
		// counter's decay
		log.Error("failed to reset failed attempts", sl.Err(err))
	}

	token, err := jwt.NewToken(&user, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (a *Auth) failAttempt(ctx context.Context, op, email string) error {
	if err := a.lockouts.RecordFailedAttempt(ctx, email); err != nil {
		if errors.Is(err, lockout.ErrTooManyAttempts) {
			return fmt.Errorf("%s: %w", op, err)
		}

		a.log.With(slog.String("op", op)).Error("failed to record failed attempt", sl.Err(err))
	}

	return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
}

func (a *Auth) RegisterNewUser(ctx context.Context, email string, password string) (uuid.UUID, error) {
	const op = "auth.RegisterNewUser"
	log := a.log.With(slog.String("op", op))
	log.Info("registering new user")

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate passwordHash", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.userSaver.SaveUser(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Error("user exists", sl.Err(err))
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")

	return user.ID, nil
}

// DeleteUser also drops any lockout state so a re-created account starts
// clean.
func (a *Auth) DeleteUser(ctx context.Context, email string) error {
	const op = "auth.DeleteUser"
	log := a.log.With(slog.String("op", op))
	log.Info("deleting user")

	if err := a.userProvider.DeleteUser(ctx, email); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to delete user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.lockouts.ResetFailedAttempts(ctx, email); err != nil {
		log.Error("failed to reset failed attempts", sl.Err(err))
	}

	log.Info("user deleted")

	return nil
}
