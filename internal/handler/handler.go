package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dan9191/credit-assessment/internal/config"
	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/Dan9191/credit-assessment/internal/scoring"
	"github.com/Dan9191/credit-assessment/internal/service"
	"github.com/Dan9191/credit-assessment/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RateSource provides the cached reference key rate
type RateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// SummarySender delivers an assessment summary to the applicant
type SummarySender interface {
	SendAssessmentSummary(to string, result models.CreditAssessmentResult) error
}

type Handler struct {
	svc    *service.Service
	scorer scoring.Scorer
	rates  RateSource
	mailer SummarySender
	cfg    *config.Config
	log    *logrus.Logger
}

// NewHandler wires the HTTP layer. rates and mailer may be nil.
func NewHandler(svc *service.Service, scorer scoring.Scorer, rates RateSource, mailer SummarySender, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		svc:    svc,
		scorer: scorer,
		rates:  rates,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

type assessmentResponse struct {
	Assessment       models.CreditAssessmentResult `json:"assessment"`
	Receipt          string                        `json:"receipt,omitempty"`
	ReferenceKeyRate *float64                      `json:"reference_key_rate,omitempty"`
}

type scoreResponse struct {
	RiskScore      int                 `json:"risk_score"`
	Factors        []models.RiskFactor `json:"factors"`
	MaxLoanAmount  decimal.Decimal     `json:"max_loan_amount"`
	InterestRate   decimal.Decimal     `json:"interest_rate"`
	Recommendation string              `json:"recommendation"`
	Mode           models.ScoringMode  `json:"mode"`
}

// Assess handles multipart document upload and runs a full assessment
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req, err := assessmentRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.AssessmentTimeout)
	defer cancel()
	result := h.svc.Assess(ctx, req)

	resp := assessmentResponse{Assessment: result}
	if receipt, err := utils.IssueReceipt(result, h.cfg.ReceiptSecret, h.cfg.ReceiptTTL); err != nil {
		h.log.Errorf("Failed to issue receipt for %s: %v", result.ID, err)
	} else {
		resp.Receipt = receipt
	}
	if rate, ok := h.referenceRate(r.Context()); ok {
		resp.ReferenceKeyRate = &rate
	}

	if to := strings.TrimSpace(r.FormValue("notify_email")); to != "" && h.mailer != nil {
		go func() {
			if err := h.mailer.SendAssessmentSummary(to, result); err != nil {
				h.log.Warnf("Assessment summary not delivered: %v", err)
			}
		}()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Score scores a precomputed feature vector without any documents
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var fv models.FeatureVector
	if err := json.NewDecoder(r.Body).Decode(&fv); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid feature vector")
		return
	}

	// A payment rate implies at least one bill even when bill_count is omitted.
	if fv.BillCount == 0 && fv.PaymentRate > 0 {
		fv.BillCount = 1
	}

	score, factors := h.scorer.Score(fv)
	terms := scoring.Optimize(score, fv.Cashflow)
	h.writeJSON(w, http.StatusOK, scoreResponse{
		RiskScore:      score,
		Factors:        factors,
		MaxLoanAmount:  terms.MaxLoanAmount,
		InterestRate:   terms.InterestRate,
		Recommendation: terms.Recommendation,
		Mode:           h.scorer.Mode(),
	})
}

// KeyRate returns the cached reference key rate including the bank margin
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, ok := h.referenceRate(r.Context())
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "key rate unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"key_rate": rate})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) referenceRate(ctx context.Context) (float64, bool) {
	if h.rates == nil {
		return 0, false
	}
	rate, err := h.rates.CurrentRate(ctx)
	if err != nil {
		h.log.Debugf("Reference key rate not available: %v", err)
		return 0, false
	}
	return rate, true
}

func assessmentRequest(r *http.Request) (service.AssessmentRequest, error) {
	var req service.AssessmentRequest
	var err error

	if req.BankConnected, err = formBool(r, "bank_connected"); err != nil {
		return req, err
	}
	if req.WalletConnected, err = formBool(r, "wallet_connected"); err != nil {
		return req, err
	}
	if req.Business.YearsInBusiness, err = formFloat(r, "years_in_business"); err != nil {
		return req, err
	}
	if req.Business.MonthlyRevenue, err = formFloat(r, "monthly_revenue"); err != nil {
		return req, err
	}

	if r.MultipartForm == nil {
		return req, nil
	}
	roles := []service.DocumentRole{service.RoleBankStatement, service.RoleUtilityBill, service.RoleWallet}
	for _, role := range roles {
		for _, fh := range r.MultipartForm.File[string(role)] {
			req.Documents = append(req.Documents, uploadedDocument(role, fh))
		}
	}
	return req, nil
}

func uploadedDocument(role service.DocumentRole, fh *multipart.FileHeader) service.Document {
	return service.Document{
		Role: role,
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func formBool(r *http.Request, key string) (bool, error) {
	v := r.FormValue(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(key + " must be a boolean")
	}
	return b, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, errors.New(key + " must be a non-negative number")
	}
	return f, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
