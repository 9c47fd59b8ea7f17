package parser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type stubSamples struct {
	err error
}

func (s stubSamples) BankTransactions(context.Context) ([]models.BankTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.BankTransaction{
		models.NewBankTransaction(today, decimal.NewFromInt(5000), "Salary"),
	}, nil
}

func (s stubSamples) UtilityBills(context.Context) ([]models.UtilityBill, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.UtilityBill{{Provider: "Electricity Board", Amount: decimal.NewFromInt(120), IsPaid: true}}, nil
}

func (s stubSamples) WalletTransactions(context.Context) ([]models.WalletTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.WalletTransaction{{Amount: decimal.NewFromInt(35), Type: models.WalletPayment}}, nil
}

func newTestParser(samples SampleSource) (*Parser, *test.Hook) {
	log, hook := test.NewNullLogger()
	p := NewParser(samples, log)
	p.now = func() time.Time { return today.Add(13 * time.Hour) }
	return p, hook
}

func TestDecodeBankTransactions(t *testing.T) {
	input := "date,amount,description\n2024-01-05,5000,Salary\n2024-01-07,-1200.50,Rent\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, models.Deposit, txns[0].Type)
	assert.Equal(t, "Salary", txns[0].Description)
	assert.True(t, txns[1].Amount.Equal(decimal.RequireFromString("-1200.50")))
	assert.Equal(t, models.Withdrawal, txns[1].Type)
}

func TestDecodeBankTransactions_NonNumericAmount(t *testing.T) {
	input := "date,amount,description\n2024-01-05,abc,Mystery\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Amount.IsZero())
	assert.Equal(t, models.Withdrawal, txns[0].Type)
}

func TestDecodeBankTransactions_HeaderOnly(t *testing.T) {
	txns, err := DecodeBankTransactions(strings.NewReader("date,amount,description\n"), today)

	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestDecodeBankTransactions_EmptyInput(t *testing.T) {
	txns, err := DecodeBankTransactions(strings.NewReader(""), today)

	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestDecodeBankTransactions_HeaderlessKeepsFirstRow(t *testing.T) {
	input := "2024-01-05,5000,Salary\n2024-01-07,-300,Fuel\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Salary", txns[0].Description)
}

func TestDecodeBankTransactions_ReorderedColumns(t *testing.T) {
	input := "Description,Amount,Transaction Date\nSupplier,-750,2024-02-01\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Supplier", txns[0].Description)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(-750)))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestDecodeBankTransactions_MissingFieldsUseDefaults(t *testing.T) {
	input := "date,amount,description\n,250\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, today, txns[0].Date)
	assert.Equal(t, "Transaction", txns[0].Description)
	assert.Equal(t, models.Deposit, txns[0].Type)
}

func TestDecodeUtilityBills(t *testing.T) {
	input := "provider,amount,dueDate,paymentDate,isPaid\n" +
		"Electricity Board,120,2024-03-01,2024-02-28,TRUE\n" +
		"Water Supply,80,2024-03-05,,false\n" +
		",-15,not-a-date,,yes\n"

	bills, err := DecodeUtilityBills(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, bills, 3)

	assert.Equal(t, "Electricity Board", bills[0].Provider)
	assert.True(t, bills[0].IsPaid)
	require.NotNil(t, bills[0].PaymentDate)
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), *bills[0].PaymentDate)

	assert.False(t, bills[1].IsPaid)
	assert.Nil(t, bills[1].PaymentDate)

	assert.Equal(t, "Utility Provider", bills[2].Provider)
	assert.True(t, bills[2].Amount.IsZero())
	assert.Equal(t, today, bills[2].DueDate)
	assert.False(t, bills[2].IsPaid)
}

func TestDecodeWalletTransactions(t *testing.T) {
	input := "date,amount,type,vendor\n2024-03-15,120,payment,PhonePe\n2024-04-01,-500,RECEIVE,PayTM\n2024-04-02,10,refund,\n"

	txns, err := DecodeWalletTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, models.WalletPayment, txns[0].Type)
	assert.Equal(t, "PhonePe", txns[0].Vendor)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, models.WalletReceive, txns[1].Type)
	assert.Equal(t, models.WalletPayment, txns[2].Type)
}

func TestParser_MalformedDocumentFallsBackToSamples(t *testing.T) {
	p, hook := newTestParser(stubSamples{})

	txns := p.BankTransactions(context.Background(), iotest.ErrReader(errors.New("connection reset")))

	require.Len(t, txns, 1)
	assert.Equal(t, "Salary", txns[0].Description)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "bank", hook.LastEntry().Data["kind"])
}

func TestParser_NilReaderFallsBack(t *testing.T) {
	p, _ := newTestParser(stubSamples{})

	bills := p.UtilityBills(context.Background(), nil)
	wallet := p.WalletTransactions(context.Background(), nil)

	assert.Len(t, bills, 1)
	assert.Len(t, wallet, 1)
}

func TestParser_SampleSourceFailureYieldsEmpty(t *testing.T) {
	p, hook := newTestParser(stubSamples{err: errors.New("db down")})

	txns := p.BankTransactions(context.Background(), nil)

	assert.NotNil(t, txns)
	assert.Empty(t, txns)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestParser_UsesTodayForMissingDates(t *testing.T) {
	p, _ := newTestParser(stubSamples{})

	txns := p.BankTransactions(context.Background(), strings.NewReader("2024-13-45,100,Odd date\n"))

	require.Len(t, txns, 1)
	assert.Equal(t, today, txns[0].Date)
}

func TestDecode_HeaderlessRowsWithAliasValues(t *testing.T) {
	tests := []struct {
		name   string
		decode func(string) (int, error)
		input  string
		want   int
	}{
		{
			name: "bank description named like a column",
			decode: func(in string) (int, error) {
				txns, err := DecodeBankTransactions(strings.NewReader(in), today)
				return len(txns), err
			},
			input: "2024-01-05,5000,Details\n2024-01-06,-1200,Rent\n",
			want:  2,
		},
		{
			name: "bank row of alias words with a date",
			decode: func(in string) (int, error) {
				txns, err := DecodeBankTransactions(strings.NewReader(in), today)
				return len(txns), err
			},
			input: "2024-01-05,Value,Memo\n",
			want:  1,
		},
		{
			name: "bill provider named like a column",
			decode: func(in string) (int, error) {
				bills, err := DecodeUtilityBills(strings.NewReader(in), today)
				return len(bills), err
			},
			input: "Utility,120,2024-01-10,2024-01-09,true\nCompany,80,2024-02-10,,false\n",
			want:  2,
		},
		{
			name: "wallet vendor named like a column",
			decode: func(in string) (int, error) {
				txns, err := DecodeWalletTransactions(strings.NewReader(in), today)
				return len(txns), err
			},
			input: "2024-03-15,35,payment,App\n",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.decode(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestDecodeBankTransactions_AliasDescriptionKeepsValues(t *testing.T) {
	input := "2024-01-05,5000,Details\n2024-01-06,-1200,Rent\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Details", txns[0].Description)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(-1200)))
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), txns[1].Date)
}

func TestDecodeBankTransactions_PartialHeaderUsesPositions(t *testing.T) {
	input := "date,amount,notes\n2024-01-05,10,Coffee\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestDecodeBankTransactions_StrayQuotesKeepStatement(t *testing.T) {
	input := "date,amount,description\n2024-01-05,40,Joe's \"Cafe\" sale\n2024-01-06,-15,Parking\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, `Joe's "Cafe" sale`, txns[0].Description)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "Parking", txns[1].Description)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "5000", want: "5000"},
		{in: "-1200.50", want: "-1200.5"},
		{in: "1e3", want: "1000"},
		{in: "abc", want: "0"},
		{in: "", want: "0"},
		{in: "1e50000000", want: "0"},
		{in: "-1e-40", want: "0"},
		{in: "12345678901234567890", want: "0"},
		{in: strings.Repeat("9", 80), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAmount(tt.in).String())
		})
	}
}

func TestDecodeBankTransactions_HugeExponentIsNonNumeric(t *testing.T) {
	input := "date,amount,description\n2024-01-05,1e50000000,X\n2024-01-06,100,Y\n"

	txns, err := DecodeBankTransactions(strings.NewReader(input), today)

	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.True(t, txns[0].Amount.IsZero())
	assert.Equal(t, models.Withdrawal, txns[0].Type)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(100)))
	// Summing stays cheap once the cell is rejected.
	assert.True(t, txns[0].Amount.Add(txns[1].Amount).Equal(decimal.NewFromInt(100)))
}
