package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a bank transaction
type TransactionType string

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

// TypeForAmount derives the transaction direction from the sign of the amount.
// Zero counts as a withdrawal.
func TypeForAmount(amount decimal.Decimal) TransactionType {
	if amount.IsPositive() {
		return Deposit
	}
	return Withdrawal
}

// BankTransaction represents one row of a bank statement
type BankTransaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
}

// NewBankTransaction builds a transaction whose type always agrees with the amount sign
func NewBankTransaction(date time.Time, amount decimal.Decimal, description string) BankTransaction {
	return BankTransaction{
		Date:        date,
		Amount:      amount,
		Description: description,
		Type:        TypeForAmount(amount),
	}
}

// WalletTransactionType is the kind of digital-wallet activity
type WalletTransactionType string

const (
	WalletPayment  WalletTransactionType = "payment"
	WalletTransfer WalletTransactionType = "transfer"
	WalletReceive  WalletTransactionType = "receive"
)

// ParseWalletTransactionType maps free text onto a known wallet type, defaulting to payment
func ParseWalletTransactionType(s string) WalletTransactionType {
	switch WalletTransactionType(s) {
	case WalletTransfer, WalletReceive:
		return WalletTransactionType(s)
	default:
		return WalletPayment
	}
}

// WalletTransaction represents digital-wallet activity
type WalletTransaction struct {
	Date   time.Time             `json:"date"`
	Amount decimal.Decimal       `json:"amount"` // Never negative
	Type   WalletTransactionType `json:"type"`
	Vendor string                `json:"vendor,omitempty"`
}
