package repository

import (
	"context"
	"time"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
)

// StaticSamples serves the built-in demonstration datasets.
// Dates are relative to the clock so the history always looks recent.
type StaticSamples struct {
	now func() time.Time
}

// NewStaticSamples initializes the built-in sample source
func NewStaticSamples() *StaticSamples {
	return &StaticSamples{now: time.Now}
}

func (s *StaticSamples) daysAgo(n int) time.Time {
	return s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -n)
}

// BankTransactions returns a small month of activity
func (s *StaticSamples) BankTransactions(_ context.Context) ([]models.BankTransaction, error) {
	return []models.BankTransaction{
		models.NewBankTransaction(s.daysAgo(30), decimal.NewFromInt(5000), "Salary"),
		models.NewBankTransaction(s.daysAgo(25), decimal.NewFromInt(-1200), "Rent"),
		models.NewBankTransaction(s.daysAgo(15), decimal.NewFromInt(-500), "Utilities"),
		models.NewBankTransaction(s.daysAgo(2), decimal.NewFromInt(100), "Refund"),
	}, nil
}

// UtilityBills returns two paid bills
func (s *StaticSamples) UtilityBills(_ context.Context) ([]models.UtilityBill, error) {
	elecPaid := s.daysAgo(13)
	waterPaid := s.daysAgo(8)
	return []models.UtilityBill{
		{
			Provider:    "Electricity Board",
			Amount:      decimal.NewFromInt(120),
			DueDate:     s.daysAgo(15),
			PaymentDate: &elecPaid,
			IsPaid:      true,
		},
		{
			Provider:    "Water Supply",
			Amount:      decimal.NewFromInt(80),
			DueDate:     s.daysAgo(10),
			PaymentDate: &waterPaid,
			IsPaid:      true,
		},
	}, nil
}

// WalletTransactions returns the demo wallet activity
func (s *StaticSamples) WalletTransactions(_ context.Context) ([]models.WalletTransaction, error) {
	return []models.WalletTransaction{
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(120), Type: models.WalletPayment, Vendor: "PhonePe"},
		{Date: time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(35), Type: models.WalletPayment, Vendor: "GPay"},
		{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(500), Type: models.WalletReceive, Vendor: "PayTM"},
	}, nil
}
