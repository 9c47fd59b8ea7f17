package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func bankTxn(amount int64) models.BankTransaction {
	return models.NewBankTransaction(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(amount), "txn")
}

func TestExtract_Empty(t *testing.T) {
	fv := Extract(nil, nil, nil)

	assert.Equal(t, models.FeatureVector{}, fv)
}

func TestExtract_BankFeatures(t *testing.T) {
	bank := []models.BankTransaction{bankTxn(5000), bankTxn(-1200), bankTxn(-500), bankTxn(100)}

	fv := Extract(bank, nil, nil)

	assert.InDelta(t, 3400.0, fv.Cashflow, 1e-9)
	// mean 850, squared deviations sum to 23,810,000
	assert.InDelta(t, math.Sqrt(23810000.0/4), fv.Volatility, 1e-9)
}

func TestExtract_WithdrawalWithPositiveAmountStillSubtracts(t *testing.T) {
	// A hand-built record whose type disagrees with its sign is treated by type.
	bank := []models.BankTransaction{
		bankTxn(1000),
		{Amount: decimal.NewFromInt(300), Type: models.Withdrawal},
	}

	fv := Extract(bank, nil, nil)

	assert.InDelta(t, 700.0, fv.Cashflow, 1e-9)
}

func TestExtract_SingleTransactionHasNoVolatility(t *testing.T) {
	fv := Extract([]models.BankTransaction{bankTxn(2500)}, nil, nil)

	assert.Equal(t, 0.0, fv.Volatility)
	assert.InDelta(t, 2500.0, fv.Cashflow, 1e-9)
}

func TestExtract_PaymentRate(t *testing.T) {
	tests := []struct {
		name  string
		paid  []bool
		rate  float64
		count int
	}{
		{name: "no bills", paid: nil, rate: 0, count: 0},
		{name: "all paid", paid: []bool{true, true}, rate: 1, count: 2},
		{name: "none paid", paid: []bool{false, false, false}, rate: 0, count: 3},
		{name: "three of four", paid: []bool{true, true, false, true}, rate: 0.75, count: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bills []models.UtilityBill
			for _, p := range tt.paid {
				bills = append(bills, models.UtilityBill{Provider: "Power", Amount: decimal.NewFromInt(100), IsPaid: p})
			}

			fv := Extract(nil, bills, nil)

			assert.InDelta(t, tt.rate, fv.PaymentRate, 1e-9)
			assert.Equal(t, tt.count, fv.BillCount)
		})
	}
}

func TestExtract_WalletFeatures(t *testing.T) {
	wallet := []models.WalletTransaction{
		{Amount: decimal.NewFromInt(120), Type: models.WalletPayment},
		{Amount: decimal.NewFromInt(35), Type: models.WalletPayment},
		{Amount: decimal.NewFromInt(500), Type: models.WalletReceive},
	}

	fv := Extract(nil, nil, wallet)

	assert.Equal(t, 3, fv.WalletActivityCount)
	assert.InDelta(t, 655.0/3, fv.AvgWalletAmount, 1e-6)
}
