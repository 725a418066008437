// Package notify delivers alerts over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// sendFunc delivers a composed email to addr
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send:   func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// SendLowBalanceAlert warns that a ledger is projected to fall below threshold
func (s *Sender) SendLowBalanceAlert(to string, f models.LedgerForecast, threshold float64) error {
	e := LowBalanceEmail(s.cfg.SenderEmail, to, f, threshold)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send low balance alert to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// LowBalanceEmail composes the alert for a single ledger forecast
func LowBalanceEmail(from, to string, f models.LedgerForecast, threshold float64) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Low balance forecast: %s", f.LedgerName)

	var body strings.Builder
	fmt.Fprintf(&body, "Ledger %q (#%d) is projected to fall below %.2f.\n\n", f.LedgerName, f.LedgerID, threshold)
	fmt.Fprintf(&body, "Opening balance:   %.2f\n", f.OpeningBalance)
	fmt.Fprintf(&body, "Projected change:  %.2f\n", f.ProjectedChange)
	fmt.Fprintf(&body, "Projected balance: %.2f\n", f.ProjectedBalance)
	if len(f.Monthly) > 0 {
		body.WriteString("\nMonth     Recurring  Historical  Change\n")
		for _, m := range f.Monthly {
			fmt.Fprintf(&body, "%s  %9.2f  %10.2f  %6.2f\n", m.Month, m.RecurringTotal, m.HistoricalTotal, m.ProjectedChange)
		}
	}
	body.WriteString("\nBest regards,\nLedger Service")
	e.Text = []byte(body.String())
	return e
}
