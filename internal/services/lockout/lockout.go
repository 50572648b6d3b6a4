package lockout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MaxAttempts is the number of consecutive failures after which an
	// identity is locked.
	MaxAttempts = 5
	// LockDuration is the fixed lock window.
	LockDuration = 15 * time.Minute

	lockoutEventType = "account_locked"
)

type RecordProvider interface {
	LockoutRecord(ctx context.Context, identity string) (models.LockoutRecord, error)
	SaveLockoutRecord(ctx context.Context, identity string, record models.LockoutRecord) error
	RemoveLockoutRecord(ctx context.Context, identity string) error
}

type EventRecorder interface {
	SaveEvent(ctx context.Context, eventType, payload string) (models.Event, error)
}

type Service struct {
	log             *slog.Logger
	records         RecordProvider
	events          EventRecorder
	failedAttempts  *prometheus.CounterVec
	accountLockouts prometheus.Counter
	now             func() time.Time
}

// New returns a new instance of the lockout service. events may be nil when
// no outbox is wired (tests, local tooling).
func New(
	log *slog.Logger,
	records RecordProvider,
	events EventRecorder,
	failedAttempts *prometheus.CounterVec,
	accountLockouts prometheus.Counter,
) *Service {
	return &Service{
		log:             log,
		records:         records,
		events:          events,
		failedAttempts:  failedAttempts,
		accountLockouts: accountLockouts,
		now:             time.Now,
	}
}

// CheckLockout fails with *LockedError while the identity's lock window is
// still open. A record whose window has closed is purged on the spot, so
// later reads never observe a stale lock.
func (s *Service) CheckLockout(ctx context.Context, identity string) error {
	const op = "lockout.CheckLockout"
	log := s.log.With(slog.String("op", op))

	record, err := s.records.LockoutRecord(ctx, identity)
	if err != nil {
		if errors.Is(err, storage.ErrLockoutNotFound) {
			return nil
		}

		log.Error("failed to read lockout record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if record.Locked(now) {
		remaining := int((record.LockedUntil.Sub(now) + time.Minute - 1) / time.Minute)
		log.Warn("account is locked", slog.Int("remaining_minutes", remaining))
		return fmt.Errorf("%s: %w", op, &LockedError{RemainingMinutes: remaining})
	}

	// a record that carried a lock is stale once the window closes; purge
	// it so the counter restarts from zero. Records still accumulating
	// attempts are left alone.
	if !record.LockedUntil.IsZero() {
		if err := s.records.RemoveLockoutRecord(ctx, identity); err != nil {
			log.Error("failed to purge stale lockout record", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// RecordFailedAttempt increments the identity's failure counter and locks
// the account once the counter reaches MaxAttempts, failing with
// ErrTooManyAttempts on the locking call itself.
func (s *Service) RecordFailedAttempt(ctx context.Context, identity string) error {
	const op = "lockout.RecordFailedAttempt"
	log := s.log.With(slog.String("op", op))

	record, err := s.records.LockoutRecord(ctx, identity)
	if err != nil && !errors.Is(err, storage.ErrLockoutNotFound) {
		log.Error("failed to read lockout record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	record.Attempts++
	record.LastAttempt = now
	s.failedAttempts.WithLabelValues(identity).Inc()

	if record.Attempts >= MaxAttempts {
		record.LockedUntil = now.Add(LockDuration)
		if err := s.records.SaveLockoutRecord(ctx, identity, record); err != nil {
			log.Error("failed to save lockout record", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		s.accountLockouts.Inc()
		s.recordLockoutEvent(ctx, identity, record.Attempts)
		log.Warn("account locked", slog.Int("attempts", record.Attempts))

		return fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	if err := s.records.SaveLockoutRecord(ctx, identity, record); err != nil {
		log.Error("failed to save lockout record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ResetFailedAttempts drops the identity's record. Resetting an identity
// with no record is a no-op.
func (s *Service) ResetFailedAttempts(ctx context.Context, identity string) error {
	const op = "lockout.ResetFailedAttempts"

	if err := s.records.RemoveLockoutRecord(ctx, identity); err != nil {
		s.log.With(slog.String("op", op)).Error("failed to remove lockout record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// recordLockoutEvent is best effort: the lock stands even if the outbox
// write fails.
func (s *Service) recordLockoutEvent(ctx context.Context, identity string, attempts int) {
	const op = "lockout.recordLockoutEvent"

	if s.events == nil {
		return
	}

	payload, err := json.Marshal(models.LockoutEvent{Email: identity, Attempts: attempts})
	if err != nil {
		s.log.With(slog.String("op", op)).Error("failed to marshal lockout event", sl.Err(err))
		return
	}

	if _, err := s.events.SaveEvent(ctx, lockoutEventType, string(payload)); err != nil {
		s.log.With(slog.String("op", op)).Error("failed to save lockout event", sl.Err(err))
	}
}
