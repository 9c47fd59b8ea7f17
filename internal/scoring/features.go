package scoring

import (
	"math"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
)

// Extract computes the feature vector for one applicant.
// Empty inputs resolve to zero features; the result never contains NaN or Inf.
func Extract(bank []models.BankTransaction, bills []models.UtilityBill, wallet []models.WalletTransaction) models.FeatureVector {
	return models.FeatureVector{
		Cashflow:            cashflow(bank),
		Volatility:          volatility(bank),
		PaymentRate:         paymentRate(bills),
		BillCount:           len(bills),
		WalletActivityCount: len(wallet),
		AvgWalletAmount:     avgWalletAmount(wallet),
	}
}

func cashflow(bank []models.BankTransaction) float64 {
	deposits, withdrawals := decimal.Zero, decimal.Zero
	for _, t := range bank {
		if t.Type == models.Deposit {
			deposits = deposits.Add(t.Amount)
		} else {
			withdrawals = withdrawals.Add(t.Amount.Abs())
		}
	}
	return finite(deposits.Sub(withdrawals).InexactFloat64())
}

// volatility is the population standard deviation of all bank amounts
func volatility(bank []models.BankTransaction) float64 {
	if len(bank) == 0 {
		return 0
	}
	n := float64(len(bank))
	var sum float64
	for _, t := range bank {
		sum += t.Amount.InexactFloat64()
	}
	mean := sum / n
	var sq float64
	for _, t := range bank {
		d := t.Amount.InexactFloat64() - mean
		sq += d * d
	}
	return finite(math.Sqrt(sq / n))
}

func paymentRate(bills []models.UtilityBill) float64 {
	if len(bills) == 0 {
		return 0
	}
	paid := 0
	for _, b := range bills {
		if b.IsPaid {
			paid++
		}
	}
	return float64(paid) / float64(len(bills))
}

func avgWalletAmount(wallet []models.WalletTransaction) float64 {
	if len(wallet) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, w := range wallet {
		total = total.Add(w.Amount)
	}
	return finite(total.Div(decimal.NewFromInt(int64(len(wallet)))).InexactFloat64())
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
