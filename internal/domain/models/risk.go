package models

// RiskAssessment is the scoring verifier's verdict on a risk token.
type RiskAssessment struct {
	Passed bool
	Score  float64
	Action string
}
