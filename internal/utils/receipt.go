package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const receiptIssuer = "credit-assessment"

// ReceiptClaims is the signed summary of an assessment that callers can store
// alongside an applicant profile and verify later.
type ReceiptClaims struct {
	RiskScore     int    `json:"risk_score"`
	MaxLoanAmount string `json:"max_loan_amount"`
	InterestRate  string `json:"interest_rate"`
	Mode          string `json:"mode"`
	Fallback      bool   `json:"fallback,omitempty"`
	jwt.RegisteredClaims
}

// IssueReceipt signs an assessment result with HS256
func IssueReceipt(result models.CreditAssessmentResult, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("receipt secret is empty")
	}
	claims := ReceiptClaims{
		RiskScore:     result.RiskScore,
		MaxLoanAmount: result.MaxLoanAmount.String(),
		InterestRate:  result.InterestRate.StringFixed(2),
		Mode:          string(result.Mode),
		Fallback:      result.Fallback,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        result.ID.String(),
			Issuer:    receiptIssuer,
			IssuedAt:  jwt.NewNumericDate(result.AssessedAt),
			ExpiresAt: jwt.NewNumericDate(result.AssessedAt.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign receipt: %w", err)
	}
	return signed, nil
}

// VerifyReceipt checks the signature, issuer and expiry of a receipt
func VerifyReceipt(receipt, secret string) (*ReceiptClaims, error) {
	claims := &ReceiptClaims{}
	_, err := jwt.ParseWithClaims(receipt, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(receiptIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt: %w", err)
	}
	return claims, nil
}
