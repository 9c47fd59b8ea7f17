package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UtilityBill represents a utility bill and whether it was paid
type UtilityBill struct {
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	IsPaid      bool            `json:"is_paid"`
}
