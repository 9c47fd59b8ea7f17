package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Dan9191/credit-assessment/internal/metrics"
	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/Dan9191/credit-assessment/internal/parser"
	"github.com/Dan9191/credit-assessment/internal/scoring"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Fallback assessment values
const (
	FallbackRiskScore      = 60
	FallbackFactorName     = "Basic Assessment"
	FallbackRecommendation = "Please ensure all required financial data is provided for a complete assessment."
)

var (
	FallbackMaxLoanAmount = decimal.NewFromInt(10000)
	FallbackInterestRate  = decimal.RequireFromString("12.5")
)

// AssessmentRequest carries everything one assessment needs
type AssessmentRequest struct {
	Documents       []Document
	BankConnected   bool
	WalletConnected bool
	Business        models.BusinessData
}

// FallbackAlerter is told, best effort, when an assessment falls back
type FallbackAlerter interface {
	SendFallbackAlert(assessmentID string, cause error) error
}

// Service runs credit assessments. It keeps no per-request state and is safe
// for concurrent use.
type Service struct {
	parser  *parser.Parser
	samples parser.SampleSource
	scorer  scoring.Scorer
	alerter FallbackAlerter
	log     *logrus.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewService initializes a new service. alerter may be nil.
func NewService(p *parser.Parser, samples parser.SampleSource, scorer scoring.Scorer, alerter FallbackAlerter, log *logrus.Logger) *Service {
	return &Service{
		parser:  p,
		samples: samples,
		scorer:  scorer,
		alerter: alerter,
		log:     log,
		now:     time.Now,
		newID:   uuid.New,
	}
}

// Assess always returns a usable assessment. Any failure inside the pipeline
// yields the fixed fallback result instead of an error.
func (s *Service) Assess(ctx context.Context, req AssessmentRequest) models.CreditAssessmentResult {
	start := time.Now()
	defer func() { metrics.AssessmentDuration.Observe(time.Since(start).Seconds()) }()

	id := s.newID()
	result, err := s.run(ctx, id, req)
	if err != nil {
		return s.fallback(id, err)
	}

	metrics.AssessmentsTotal.WithLabelValues(metrics.OutcomeSuccess, string(result.Mode)).Inc()
	metrics.RiskScores.Observe(float64(result.RiskScore))
	s.log.WithFields(logrus.Fields{
		"assessment_id": id.String(),
		"risk_score":    result.RiskScore,
		"max_amount":    result.MaxLoanAmount.String(),
		"rate":          result.InterestRate.String(),
		"mode":          result.Mode,
	}).Info("Credit assessment completed")
	return result
}

// AssessTexts assesses raw texts tagged by position: the first is the bank
// statement, the rest are utility bills.
func (s *Service) AssessTexts(ctx context.Context, texts []string, bankConnected, walletConnected bool) models.CreditAssessmentResult {
	return s.Assess(ctx, AssessmentRequest{
		Documents:       PositionalDocuments(texts),
		BankConnected:   bankConnected,
		WalletConnected: walletConnected,
	})
}

func (s *Service) run(ctx context.Context, id uuid.UUID, req AssessmentRequest) (result models.CreditAssessmentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assessment pipeline panicked: %v", r)
		}
	}()

	bank, bills, wallet := s.parseDocuments(ctx, readDocuments(ctx, req.Documents))
	if err := ctx.Err(); err != nil {
		return models.CreditAssessmentResult{}, fmt.Errorf("assessment aborted: %w", err)
	}

	if req.BankConnected && len(bank) == 0 {
		bank = s.demoBankTransactions(ctx)
	}
	if req.WalletConnected && len(wallet) == 0 {
		wallet = s.demoWalletTransactions(ctx)
	}

	features := scoring.Extract(bank, bills, wallet)
	scorer := s.scorer
	if sim, ok := scorer.(*scoring.SimulatedScorer); ok {
		scorer = sim.WithBusinessData(req.Business)
	}
	score, factors := scorer.Score(features)
	terms := scoring.Optimize(score, features.Cashflow)

	result = models.CreditAssessmentResult{
		ID:             id,
		RiskScore:      score,
		MaxLoanAmount:  terms.MaxLoanAmount,
		InterestRate:   terms.InterestRate,
		Factors:        factors,
		Recommendation: terms.Recommendation,
		Mode:           scorer.Mode(),
		AssessedAt:     s.now().UTC(),
	}
	if err := validate(result); err != nil {
		return models.CreditAssessmentResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"assessment_id": id.String(),
		"bank_records":  len(bank),
		"bills":         len(bills),
		"wallet":        len(wallet),
		"cashflow":      features.Cashflow,
		"volatility":    features.Volatility,
	}).Debug("Features extracted")
	return result, nil
}

func (s *Service) parseDocuments(ctx context.Context, docs []loadedDocument) ([]models.BankTransaction, []models.UtilityBill, []models.WalletTransaction) {
	bank := []models.BankTransaction{}
	bills := []models.UtilityBill{}
	wallet := []models.WalletTransaction{}
	for _, doc := range docs {
		if doc.err != nil {
			s.log.Warnf("Failed to read document %s: %v", doc.name, doc.err)
		}
		switch doc.role {
		case RoleBankStatement:
			bank = append(bank, s.parser.BankTransactions(ctx, doc.reader)...)
		case RoleUtilityBill:
			bills = append(bills, s.parser.UtilityBills(ctx, doc.reader)...)
		case RoleWallet:
			wallet = append(wallet, s.parser.WalletTransactions(ctx, doc.reader)...)
		default:
			s.log.Warnf("Ignoring document %s with unknown role %q", doc.name, doc.role)
		}
	}
	return bank, bills, wallet
}

func (s *Service) demoBankTransactions(ctx context.Context) []models.BankTransaction {
	txns, err := s.samples.BankTransactions(ctx)
	if err != nil {
		s.log.Errorf("Failed to load demo bank transactions: %v", err)
		return nil
	}
	metrics.SyntheticData.WithLabelValues("bank").Inc()
	s.log.Info("Bank connected without parseable statements, using demo transaction history")
	return txns
}

func (s *Service) demoWalletTransactions(ctx context.Context) []models.WalletTransaction {
	txns, err := s.samples.WalletTransactions(ctx)
	if err != nil {
		s.log.Errorf("Failed to load demo wallet transactions: %v", err)
		return nil
	}
	metrics.SyntheticData.WithLabelValues("wallet").Inc()
	s.log.Info("Wallet connected, using demo wallet activity")
	return txns
}

func (s *Service) fallback(id uuid.UUID, cause error) models.CreditAssessmentResult {
	metrics.AssessmentsTotal.WithLabelValues(metrics.OutcomeFallback, string(models.ModeDeterministic)).Inc()
	s.log.WithFields(logrus.Fields{
		"assessment_id": id.String(),
		"error":         cause,
	}).Error("Credit assessment failed, returning fallback assessment")

	if s.alerter != nil {
		go func() {
			if err := s.alerter.SendFallbackAlert(id.String(), cause); err != nil {
				s.log.Warnf("Fallback alert not delivered: %v", err)
			}
		}()
	}
	return FallbackAssessment(id, s.now().UTC())
}

// FallbackAssessment is the fixed, clearly labelled result used when the
// pipeline cannot produce a real one
func FallbackAssessment(id uuid.UUID, at time.Time) models.CreditAssessmentResult {
	return models.CreditAssessmentResult{
		ID:            id,
		RiskScore:     FallbackRiskScore,
		MaxLoanAmount: FallbackMaxLoanAmount,
		InterestRate:  FallbackInterestRate,
		Factors: []models.RiskFactor{
			{Name: FallbackFactorName, Impact: 0.6, Description: "Based on limited available data"},
		},
		Recommendation: FallbackRecommendation,
		Mode:           models.ModeDeterministic,
		Fallback:       true,
		AssessedAt:     at,
	}
}

func validate(r models.CreditAssessmentResult) error {
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return fmt.Errorf("risk score %d out of range", r.RiskScore)
	}
	if r.MaxLoanAmount.LessThan(scoring.MinLoanAmount) {
		return fmt.Errorf("max loan amount %s below floor", r.MaxLoanAmount)
	}
	if r.InterestRate.LessThan(scoring.FloorRate) || r.InterestRate.GreaterThan(scoring.CeilRate) {
		return fmt.Errorf("interest rate %s out of band", r.InterestRate)
	}
	for _, f := range r.Factors {
		if math.IsNaN(f.Impact) || f.Impact < -1 || f.Impact > 1 {
			return fmt.Errorf("factor %q has invalid impact %v", f.Name, f.Impact)
		}
	}
	return nil
}
