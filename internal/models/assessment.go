package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScoringMode tells how the risk score was produced
type ScoringMode string

const (
	ModeDeterministic ScoringMode = "deterministic"
	ModeSimulation    ScoringMode = "simulation"
)

// RiskFactor explains one contribution to the risk score.
// Impact is contribution/ceiling in [-1, 1], unrounded; negative is detrimental.
type RiskFactor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// CreditAssessmentResult is the outcome of one assessment run
type CreditAssessmentResult struct {
	ID             uuid.UUID       `json:"id"`
	RiskScore      int             `json:"risk_score"`
	MaxLoanAmount  decimal.Decimal `json:"max_loan_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"` // Percent per annum
	Factors        []RiskFactor    `json:"factors"`
	Recommendation string          `json:"recommendation"`
	Mode           ScoringMode     `json:"mode"`
	Fallback       bool            `json:"fallback"`
	AssessedAt     time.Time       `json:"assessed_at"`
}
