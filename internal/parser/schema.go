package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// column describes one field of a delimited record and the header names it may appear under
type column struct {
	name     string
	aliases  []string
	required bool
}

// schema is the ordered column layout of one record kind
type schema struct {
	kind    string
	columns []column
}

var (
	bankSchema = schema{
		kind: "bank",
		columns: []column{
			{name: "date", aliases: []string{"date", "transactiondate", "valuedate"}, required: true},
			{name: "amount", aliases: []string{"amount", "value"}, required: true},
			{name: "description", aliases: []string{"description", "details", "narration", "memo"}},
		},
	}

	billSchema = schema{
		kind: "utility_bill",
		columns: []column{
			{name: "provider", aliases: []string{"provider", "utility", "company"}, required: true},
			{name: "amount", aliases: []string{"amount", "billamount"}, required: true},
			{name: "due_date", aliases: []string{"duedate", "due"}},
			{name: "payment_date", aliases: []string{"paymentdate", "paidon", "paiddate"}},
			{name: "is_paid", aliases: []string{"ispaid", "paid", "status"}, required: true},
		},
	}

	walletSchema = schema{
		kind: "wallet",
		columns: []column{
			{name: "date", aliases: []string{"date"}},
			{name: "amount", aliases: []string{"amount"}, required: true},
			{name: "type", aliases: []string{"type", "kind"}, required: true},
			{name: "vendor", aliases: []string{"vendor", "merchant", "app"}},
		},
	}
)

// layout maps column names to cell positions in a row
type layout map[string]int

// negotiate decides whether the first row is a header. A row is a header
// only when it names every required column and none of its cells reads as
// an amount or a date. Otherwise the positional order of the schema is used.
func (s schema) negotiate(first []string) (layout, bool) {
	if named, ok := s.headerLayout(first); ok {
		return named, true
	}
	positional := layout{}
	for i, c := range s.columns {
		positional[c.name] = i
	}
	return positional, false
}

func (s schema) headerLayout(first []string) (layout, bool) {
	named := layout{}
	for i, cell := range first {
		if looksLikeValue(cell) {
			return nil, false
		}
		key := normalizeHeader(cell)
		for _, c := range s.columns {
			if _, taken := named[c.name]; taken {
				continue
			}
			if containsString(c.aliases, key) {
				named[c.name] = i
				break
			}
		}
	}
	for _, c := range s.columns {
		if _, ok := named[c.name]; c.required && !ok {
			return nil, false
		}
	}

	// Unnamed columns keep their schema position when no named column sits there.
	claimed := make(map[int]bool, len(named))
	for _, i := range named {
		claimed[i] = true
	}
	for i, c := range s.columns {
		if _, ok := named[c.name]; !ok && !claimed[i] {
			named[c.name] = i
		}
	}
	return named, true
}

func looksLikeValue(cell string) bool {
	cell = strings.TrimSpace(cell)
	if _, ok := boundedAmount(cell); ok {
		return true
	}
	_, ok := parseDate(cell)
	return ok
}

// cell returns the trimmed value of the named column, or "" when absent
func (l layout) cell(row []string, name string) string {
	i, ok := l[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "", "\ufeff", "").Replace(s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// parseDate tries the known layouts in order
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Amounts outside these bounds are treated as non-numeric. Unbounded
// exponents make decimal arithmetic rescale to arbitrarily large integers.
const (
	maxAmountLength   = 64
	maxAmountDigits   = 18
	minAmountExponent = -12
	maxAmountExponent = 15
)

// parseAmount resolves anything that is not a number of sane size to zero
func parseAmount(s string) decimal.Decimal {
	d, ok := boundedAmount(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

func boundedAmount(s string) (decimal.Decimal, bool) {
	if s == "" || len(s) > maxAmountLength {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	exp := d.Exponent()
	if exp < minAmountExponent || exp > maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, false
	}
	return d, true
}
