package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
)

// MinScore is the fixed pass threshold; score < MinScore fails, the
// boundary itself passes.
const MinScore = 0.5

var (
	ErrVerificationFailed = errors.New("risk token verification failed")
	ErrActionMismatch     = errors.New("risk token action mismatch")
)

// LowScoreError carries the rejected score together with the required
// minimum.
type LowScoreError struct {
	Score         float64
	RequiredScore float64
}

func (e *LowScoreError) Error() string {
	return fmt.Sprintf("risk score %.2f below required %.2f", e.Score, e.RequiredScore)
}

type ScoreVerifier interface {
	Verify(ctx context.Context, token string) (models.RiskAssessment, error)
}

type Service struct {
	log      *slog.Logger
	verifier ScoreVerifier
}

// New returns a new instance of the risk gate
func New(log *slog.Logger, verifier ScoreVerifier) *Service {
	return &Service{log: log, verifier: verifier}
}

// VerifyRiskToken submits the token to the scoring verifier and applies the
// three checks in order: token validity, action binding, score threshold.
// Action binding stops a token minted for one flow from being replayed on
// another.
func (s *Service) VerifyRiskToken(ctx context.Context, token, expectedAction string) error {
	const op = "risk.VerifyRiskToken"
	log := s.log.With(slog.String("op", op), slog.String("action", expectedAction))

	assessment, err := s.verifier.Verify(ctx, token)
	if err != nil {
		log.Warn("scoring verifier call failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrVerificationFailed)
	}

	if !assessment.Passed {
		log.Warn("risk token rejected by verifier")
		return fmt.Errorf("%s: %w", op, ErrVerificationFailed)
	}

	if assessment.Action != expectedAction {
		log.Warn("risk token action mismatch", slog.String("got", assessment.Action))
		return fmt.Errorf("%s: %w", op, ErrActionMismatch)
	}

	if assessment.Score < MinScore {
		log.Warn("risk score too low", slog.Float64("score", assessment.Score))
		return fmt.Errorf("%s: %w", op, &LowScoreError{Score: assessment.Score, RequiredScore: MinScore})
	}

	return nil
}
