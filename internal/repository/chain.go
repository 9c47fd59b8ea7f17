package repository

import (
	"context"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/sirupsen/logrus"
)

// Source is anything that can serve sample datasets
type Source interface {
	BankTransactions(ctx context.Context) ([]models.BankTransaction, error)
	UtilityBills(ctx context.Context) ([]models.UtilityBill, error)
	WalletTransactions(ctx context.Context) ([]models.WalletTransaction, error)
}

// Chain asks the primary source first and uses the secondary when it fails
type Chain struct {
	primary   Source
	secondary Source
	log       *logrus.Logger
}

// NewChain combines two sample sources
func NewChain(primary, secondary Source, log *logrus.Logger) *Chain {
	return &Chain{primary: primary, secondary: secondary, log: log}
}

// BankTransactions returns sample bank history
func (c *Chain) BankTransactions(ctx context.Context) ([]models.BankTransaction, error) {
	txns, err := c.primary.BankTransactions(ctx)
	if err == nil {
		return txns, nil
	}
	c.log.Warnf("Primary sample source failed for bank transactions: %v", err)
	return c.secondary.BankTransactions(ctx)
}

// UtilityBills returns sample bills
func (c *Chain) UtilityBills(ctx context.Context) ([]models.UtilityBill, error) {
	bills, err := c.primary.UtilityBills(ctx)
	if err == nil {
		return bills, nil
	}
	c.log.Warnf("Primary sample source failed for utility bills: %v", err)
	return c.secondary.UtilityBills(ctx)
}

// WalletTransactions returns sample wallet activity
func (c *Chain) WalletTransactions(ctx context.Context) ([]models.WalletTransaction, error) {
	txns, err := c.primary.WalletTransactions(ctx)
	if err == nil {
		return txns, nil
	}
	c.log.Warnf("Primary sample source failed for wallet transactions: %v", err)
	return c.secondary.WalletTransactions(ctx)
}
