package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScoreVerifier struct {
	assessment models.RiskAssessment
	err        error
}

func (v *fakeScoreVerifier) Verify(_ context.Context, _ string) (models.RiskAssessment, error) {
	return v.assessment, v.err
}

func newTestService(verifier ScoreVerifier) *Service {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), verifier)
}

func TestVerifyRiskToken(t *testing.T) {
	tests := []struct {
		name     string
		verifier *fakeScoreVerifier
		action   string
		wantErr  error
	}{
		{
			name:     "valid token passes",
			verifier: &fakeScoreVerifier{assessment: models.RiskAssessment{Passed: true, Score: 0.9, Action: "login"}},
			action:   "login",
		},
		{
			name:     "score at threshold passes",
			verifier: &fakeScoreVerifier{assessment: models.RiskAssessment{Passed: true, Score: 0.5, Action: "login"}},
			action:   "login",
		},
		{
			name:     "verifier call failure",
			verifier: &fakeScoreVerifier{err: errors.New("connection refused")},
			action:   "login",
			wantErr:  ErrVerificationFailed,
		},
		{
			name:     "invalid token",
			verifier: &fakeScoreVerifier{assessment: models.RiskAssessment{Passed: false, Score: 0.9, Action: "login"}},
			action:   "login",
			wantErr:  ErrVerificationFailed,
		},
		{
			name:     "action mismatch beats perfect score",
			verifier: &fakeScoreVerifier{assessment: models.RiskAssessment{Passed: true, Score: 1.0, Action: "register"}},
			action:   "login",
			wantErr:  ErrActionMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := newTestService(test.verifier)
			err := service.VerifyRiskToken(context.Background(), "token", test.action)

			if test.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestVerifyRiskToken_ScoreBelowThreshold(t *testing.T) {
	verifier := &fakeScoreVerifier{assessment: models.RiskAssessment{Passed: true, Score: 0.49, Action: "login"}}
	service := newTestService(verifier)

	err := service.VerifyRiskToken(context.Background(), "token", "login")

	var lowScore *LowScoreError
	require.ErrorAs(t, err, &lowScore)
	assert.Equal(t, 0.49, lowScore.Score)
	assert.Equal(t, MinScore, lowScore.RequiredScore)
}
