package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/Dan9191/family-ledger/internal/reminder"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDigest sends a payment reminder digest
func (s *Sender) SendDigest(to, name string, d reminder.Digest) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = digestSubject(d)
	e.Text = []byte(digestBody(name, d))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	err := e.Send(addr, auth)
	if err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func digestSubject(d reminder.Digest) string {
	for _, it := range d.Items {
		if it.Overdue {
			return "Overdue payments need your attention"
		}
	}
	return fmt.Sprintf("Payment reminders for %s", d.Today)
}

func digestBody(name string, d reminder.Digest) string {
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)

	sections := []struct {
		kind  reminder.Kind
		title string
	}{
		{reminder.KindInstallment, "Debt installments"},
		{reminder.KindContribution, "Paluwagan contributions"},
		{reminder.KindPayout, "Payouts ready to collect"},
	}
	for _, sec := range sections {
		var lines []string
		for _, it := range d.Items {
			if it.Kind != sec.kind {
				continue
			}
			line := fmt.Sprintf("  - %s (%s): PHP %s, %s", it.Name, it.Detail, it.Amount.StringFixed(2), it.DueDate)
			if it.Overdue {
				line += " OVERDUE"
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n%s\n\n", sec.title, strings.Join(lines, "\n"))
	}

	b.WriteString("Best regards,\nFamily Ledger")
	return b.String()
}
