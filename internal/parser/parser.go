package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dan9191/credit-assessment/internal/metrics"
	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SampleSource supplies the synthetic records used when a document cannot be parsed
type SampleSource interface {
	BankTransactions(ctx context.Context) ([]models.BankTransaction, error)
	UtilityBills(ctx context.Context) ([]models.UtilityBill, error)
	WalletTransactions(ctx context.Context) ([]models.WalletTransaction, error)
}

// Parser turns delimited text into typed records. Its methods never fail:
// a document that cannot be read at all is replaced by sample records.
type Parser struct {
	samples SampleSource
	log     *logrus.Logger
	now     func() time.Time
}

// NewParser initializes a new parser
func NewParser(samples SampleSource, log *logrus.Logger) *Parser {
	return &Parser{
		samples: samples,
		log:     log,
		now:     time.Now,
	}
}

// BankTransactions parses a bank statement
func (p *Parser) BankTransactions(ctx context.Context, r io.Reader) []models.BankTransaction {
	txns, err := DecodeBankTransactions(r, p.today())
	if err == nil {
		return txns
	}
	p.logFallback(bankSchema.kind, err)
	samples, err := p.samples.BankTransactions(ctx)
	if err != nil {
		p.log.Errorf("Failed to load sample bank transactions: %v", err)
		return []models.BankTransaction{}
	}
	return samples
}

// UtilityBills parses a utility bill export
func (p *Parser) UtilityBills(ctx context.Context, r io.Reader) []models.UtilityBill {
	bills, err := DecodeUtilityBills(r, p.today())
	if err == nil {
		return bills
	}
	p.logFallback(billSchema.kind, err)
	samples, err := p.samples.UtilityBills(ctx)
	if err != nil {
		p.log.Errorf("Failed to load sample utility bills: %v", err)
		return []models.UtilityBill{}
	}
	return samples
}

// WalletTransactions parses a digital-wallet export
func (p *Parser) WalletTransactions(ctx context.Context, r io.Reader) []models.WalletTransaction {
	txns, err := DecodeWalletTransactions(r, p.today())
	if err == nil {
		return txns
	}
	p.logFallback(walletSchema.kind, err)
	samples, err := p.samples.WalletTransactions(ctx)
	if err != nil {
		p.log.Errorf("Failed to load sample wallet transactions: %v", err)
		return []models.WalletTransaction{}
	}
	return samples
}

func (p *Parser) logFallback(kind string, err error) {
	metrics.ParseFallbacks.WithLabelValues(kind).Inc()
	p.log.WithFields(logrus.Fields{
		"kind":  kind,
		"error": err,
	}).Warn("Failed to parse document, using sample data")
}

func (p *Parser) today() time.Time {
	return p.now().UTC().Truncate(24 * time.Hour)
}

// DecodeBankTransactions reads rows of date,amount,description.
// Non-numeric amounts become zero withdrawals; missing dates become today.
func DecodeBankTransactions(r io.Reader, today time.Time) ([]models.BankTransaction, error) {
	rows, l, err := readRows(r, bankSchema)
	if err != nil {
		return nil, err
	}
	txns := make([]models.BankTransaction, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(l.cell(row, "date"))
		if !ok {
			date = today
		}
		desc := l.cell(row, "description")
		if desc == "" {
			desc = "Transaction"
		}
		txns = append(txns, models.NewBankTransaction(date, parseAmount(l.cell(row, "amount")), desc))
	}
	return txns, nil
}

// DecodeUtilityBills reads rows of provider,amount,dueDate,paymentDate,isPaid
func DecodeUtilityBills(r io.Reader, today time.Time) ([]models.UtilityBill, error) {
	rows, l, err := readRows(r, billSchema)
	if err != nil {
		return nil, err
	}
	bills := make([]models.UtilityBill, 0, len(rows))
	for _, row := range rows {
		provider := l.cell(row, "provider")
		if provider == "" {
			provider = "Utility Provider"
		}
		due, ok := parseDate(l.cell(row, "due_date"))
		if !ok {
			due = today
		}
		var paidOn *time.Time
		if t, ok := parseDate(l.cell(row, "payment_date")); ok {
			paidOn = &t
		}
		bills = append(bills, models.UtilityBill{
			Provider:    provider,
			Amount:      decimal.Max(decimal.Zero, parseAmount(l.cell(row, "amount"))),
			DueDate:     due,
			PaymentDate: paidOn,
			IsPaid:      strings.EqualFold(l.cell(row, "is_paid"), "true"),
		})
	}
	return bills, nil
}

// DecodeWalletTransactions reads rows of date,amount,type,vendor
func DecodeWalletTransactions(r io.Reader, today time.Time) ([]models.WalletTransaction, error) {
	rows, l, err := readRows(r, walletSchema)
	if err != nil {
		return nil, err
	}
	txns := make([]models.WalletTransaction, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(l.cell(row, "date"))
		if !ok {
			date = today
		}
		txns = append(txns, models.WalletTransaction{
			Date:   date,
			Amount: parseAmount(l.cell(row, "amount")).Abs(),
			Type:   models.ParseWalletTransactionType(strings.ToLower(l.cell(row, "type"))),
			Vendor: l.cell(row, "vendor"),
		})
	}
	return txns, nil
}

// readRows returns the data rows of a document together with its column layout
func readRows(r io.Reader, s schema) ([][]string, layout, error) {
	if r == nil {
		return nil, nil, errors.New("no input")
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s rows: %w", s.kind, err)
	}
	if len(records) == 0 {
		return [][]string{}, nil, nil
	}

	l, hasHeader := s.negotiate(records[0])
	if hasHeader {
		records = records[1:]
	}
	return records, l, nil
}
