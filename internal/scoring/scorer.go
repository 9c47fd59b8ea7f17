package scoring

import (
	"math"

	"github.com/Dan9191/credit-assessment/internal/models"
)

// Scorer turns a feature vector into a bounded risk score and its explanation
type Scorer interface {
	Score(fv models.FeatureVector) (int, []models.RiskFactor)
	Mode() models.ScoringMode
}

const (
	baseScore = 50.0

	cashflowCeiling  = 20.0
	paymentCeiling   = 15.0
	stabilityCeiling = 15.0
	walletCeiling    = 10.0
)

// Factor names as shown to applicants
const (
	FactorCashflow  = "Cash Flow"
	FactorPayment   = "Payment History"
	FactorStability = "Cash Flow Stability"
	FactorWallet    = "Digital Payment Activity"
)

// factorWording holds the description for a positive and a non-positive contribution
type factorWording struct {
	positive    string
	nonPositive string
}

var wordings = map[string]factorWording{
	FactorCashflow: {
		positive:    "Deposits exceed withdrawals over the observed period",
		nonPositive: "Net cash flow is flat or negative over the observed period",
	},
	FactorPayment: {
		positive:    "Most utility bills are paid on record",
		nonPositive: "Utility bill payment record is incomplete or missing",
	},
	FactorStability: {
		positive:    "Transaction amounts are steady",
		nonPositive: "Swings in transaction amounts reduce predictability",
	},
	FactorWallet: {
		positive:    "Regular digital wallet usage shows active business",
		nonPositive: "Little or no digital wallet activity observed",
	},
}

// AdditiveScorer is the deterministic, explainable scoring model.
// Each feature adds a clamped contribution to a base of 50.
type AdditiveScorer struct{}

// NewAdditiveScorer returns the deterministic scorer
func NewAdditiveScorer() *AdditiveScorer {
	return &AdditiveScorer{}
}

// Mode reports deterministic scoring
func (s *AdditiveScorer) Mode() models.ScoringMode { return models.ModeDeterministic }

// Score never fails; the all-zero vector scores 50 with neutral factors.
func (s *AdditiveScorer) Score(fv models.FeatureVector) (int, []models.RiskFactor) {
	cash := clamp(finite(fv.Cashflow)/1000, -cashflowCeiling, cashflowCeiling)

	// No bills is no evidence either way.
	var payment float64
	if fv.BillCount > 0 {
		payment = (clamp(finite(fv.PaymentRate), 0, 1) - 0.5) * 30
	}

	stability := -clamp(finite(fv.Volatility)/500, 0, stabilityCeiling)
	wallet := clamp(float64(fv.WalletActivityCount)/10, 0, walletCeiling)

	total := baseScore + cash + payment + stability + wallet
	score := int(math.Round(clamp(total, 0, 100)))

	factors := []models.RiskFactor{
		factor(FactorCashflow, cash, cashflowCeiling),
		factor(FactorPayment, payment, paymentCeiling),
		factor(FactorStability, stability, stabilityCeiling),
		factor(FactorWallet, wallet, walletCeiling),
	}
	return score, factors
}

func factor(name string, contribution, ceiling float64) models.RiskFactor {
	impact := clamp(contribution/ceiling, -1, 1)
	if impact == 0 {
		impact = 0 // drop negative zero
	}
	w := wordings[name]
	desc := w.nonPositive
	if contribution > 0 {
		desc = w.positive
	}
	return models.RiskFactor{
		Name:        name,
		Impact:      impact,
		Description: desc,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
