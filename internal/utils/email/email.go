package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/credit-assessment/internal/config"
	"github.com/Dan9191/credit-assessment/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendAssessmentSummary emails an applicant the outcome of their assessment
func (s *Sender) SendAssessmentSummary(to string, result models.CreditAssessmentResult) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your Credit Assessment Result"
	e.Text = []byte(summaryBody(result))

	if err := s.deliver(e); err != nil {
		s.logger.Errorf("Failed to send assessment summary to %s: %v", to, err)
		return fmt.Errorf("failed to send assessment summary: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendFallbackAlert tells operations that an assessment fell back to the fixed result
func (s *Sender) SendFallbackAlert(assessmentID string, cause error) error {
	if s.cfg.OpsEmail == "" {
		return nil
	}
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.OpsEmail}
	e.Subject = "Credit assessment fallback issued"
	e.Text = []byte(fmt.Sprintf(
		"Assessment %s could not be computed and the fallback assessment was returned.\n\nCause: %v\n",
		assessmentID, cause,
	))

	if err := s.deliver(e); err != nil {
		s.logger.Errorf("Failed to send fallback alert to %s: %v", s.cfg.OpsEmail, err)
		return fmt.Errorf("failed to send fallback alert: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", s.cfg.OpsEmail, e.Subject)
	return nil
}

func (s *Sender) deliver(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return s.send(e, addr, auth)
}

func summaryBody(result models.CreditAssessmentResult) string {
	var b strings.Builder
	b.WriteString("Dear applicant,\n\n")
	if result.Fallback {
		b.WriteString("We could not fully analyse the financial data you provided, so a provisional assessment was issued.\n\n")
	}
	fmt.Fprintf(&b, "Risk score: %d/100\n", result.RiskScore)
	fmt.Fprintf(&b, "Maximum loan amount: %s\n", result.MaxLoanAmount.StringFixed(0))
	fmt.Fprintf(&b, "Suggested interest rate: %s%%\n\n", result.InterestRate.StringFixed(2))
	b.WriteString("Contributing factors:\n")
	for _, f := range result.Factors {
		fmt.Fprintf(&b, "  - %s (%+.2f): %s\n", f.Name, f.Impact, f.Description)
	}
	fmt.Fprintf(&b, "\n%s\n", result.Recommendation)
	b.WriteString("\nBest regards,\nCredit Assessment Service")
	return b.String()
}
