package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNoSamples is returned when a sample table holds no rows
var ErrNoSamples = errors.New("no sample data configured")

// Repository serves demonstration datasets stored in Postgres.
// Bank and bill dates are stored as day offsets so samples never go stale.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) daysAgo(n int) time.Time {
	return r.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -n)
}

// BankTransactions loads the sample bank history
func (r *Repository) BankTransactions(ctx context.Context) ([]models.BankTransaction, error) {
	query := `
		SELECT days_ago, amount, description
		FROM credit.sample_bank_transactions
		ORDER BY days_ago DESC, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample bank transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.BankTransaction
	for rows.Next() {
		var (
			daysAgo     int
			amount      decimal.Decimal
			description string
		)
		if err := rows.Scan(&daysAgo, &amount, &description); err != nil {
			return nil, fmt.Errorf("failed to scan sample bank transaction: %w", err)
		}
		txns = append(txns, models.NewBankTransaction(r.daysAgo(daysAgo), amount, description))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample bank transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, ErrNoSamples
	}
	return txns, nil
}

// UtilityBills loads the sample bills
func (r *Repository) UtilityBills(ctx context.Context) ([]models.UtilityBill, error) {
	query := `
		SELECT provider, amount, due_days_ago, paid_days_ago, is_paid
		FROM credit.sample_utility_bills
		ORDER BY due_days_ago DESC, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample utility bills: %w", err)
	}
	defer rows.Close()

	var bills []models.UtilityBill
	for rows.Next() {
		var (
			bill    models.UtilityBill
			dueAgo  int
			paidAgo sql.NullInt64
		)
		if err := rows.Scan(&bill.Provider, &bill.Amount, &dueAgo, &paidAgo, &bill.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan sample utility bill: %w", err)
		}
		bill.DueDate = r.daysAgo(dueAgo)
		if paidAgo.Valid {
			paid := r.daysAgo(int(paidAgo.Int64))
			bill.PaymentDate = &paid
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample utility bills: %w", err)
	}
	if len(bills) == 0 {
		return nil, ErrNoSamples
	}
	return bills, nil
}

// WalletTransactions loads the sample wallet activity
func (r *Repository) WalletTransactions(ctx context.Context) ([]models.WalletTransaction, error) {
	query := `
		SELECT occurred_on, amount, type, vendor
		FROM credit.sample_wallet_transactions
		ORDER BY occurred_on, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.WalletTransaction
	for rows.Next() {
		var (
			txn     models.WalletTransaction
			txnType string
			vendor  sql.NullString
		)
		if err := rows.Scan(&txn.Date, &txn.Amount, &txnType, &vendor); err != nil {
			return nil, fmt.Errorf("failed to scan sample wallet transaction: %w", err)
		}
		txn.Type = models.ParseWalletTransactionType(txnType)
		txn.Vendor = vendor.String
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample wallet transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, ErrNoSamples
	}
	return txns, nil
}
