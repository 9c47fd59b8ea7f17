package scoring

import (
	"math"

	"github.com/shopspring/decimal"
)

// Loan term bounds
var (
	MinLoanAmount   = decimal.NewFromInt(5000)
	FloorRate       = decimal.NewFromInt(8)
	CeilRate        = decimal.NewFromInt(20)
	baseRatePercent = 8.0
)

// Recommendation bands
const (
	ExcellentThreshold = 80
	GoodThreshold      = 60
	ModerateThreshold  = 40

	RecommendationExcellent = "Excellent financial profile. Eligible for premium loan terms."
	RecommendationGood      = "Good financial profile. Eligible for standard loan terms."
	RecommendationModerate  = "Moderate financial profile. Limited loan options available."
	RecommendationImprove   = "Consider improving your payment history and cash flow before applying."
)

// Terms is the loan offer derived from a score
type Terms struct {
	MaxLoanAmount  decimal.Decimal
	InterestRate   decimal.Decimal
	Recommendation string
}

// Optimize converts a risk score and net cash flow into a loan offer.
//
//	amount = max(5000, round(score/100 * cashflow * 12))
//	rate   = clamp(8 + (100-score)/10, 8, 20)
func Optimize(score int, cashflow float64) Terms {
	return Terms{
		MaxLoanAmount:  MaxLoanAmount(score, cashflow),
		InterestRate:   InterestRate(score),
		Recommendation: Recommendation(score),
	}
}

// MaxLoanAmount is one year of cash flow scaled by the score, never below the floor
func MaxLoanAmount(score int, cashflow float64) decimal.Decimal {
	computed := decimal.NewFromInt(int64(score)).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromFloat(finite(cashflow))).
		Mul(decimal.NewFromInt(12)).
		Round(0)
	return decimal.Max(MinLoanAmount, computed)
}

// InterestRate rises as the score falls, clamped to [FloorRate, CeilRate]
func InterestRate(score int) decimal.Decimal {
	rate := baseRatePercent + float64(100-score)/10
	rate = math.Round(rate*100) / 100
	d := decimal.NewFromFloat(rate)
	if d.LessThan(FloorRate) {
		return FloorRate
	}
	if d.GreaterThan(CeilRate) {
		return CeilRate
	}
	return d
}

// Recommendation selects the advice text for a score band
func Recommendation(score int) string {
	switch {
	case score >= ExcellentThreshold:
		return RecommendationExcellent
	case score >= GoodThreshold:
		return RecommendationGood
	case score >= ModerateThreshold:
		return RecommendationModerate
	default:
		return RecommendationImprove
	}
}
