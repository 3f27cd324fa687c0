package service

import (
	"context"
	"fmt"
	"net/smtp"

	"invoicing-backend/internal/core/domain"

	"github.com/rs/zerolog"
)

// SMTPConfig holds outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	BaseURL  string // public base URL used to build links embedded in emails
}

// SMTPNotifierService sends transactional email over plain net/smtp.
type SMTPNotifierService struct {
	cfg SMTPConfig
	log zerolog.Logger
}

// NewSMTPNotifierService creates a new SMTPNotifierService.
func NewSMTPNotifierService(cfg SMTPConfig, log zerolog.Logger) *SMTPNotifierService {
	return &SMTPNotifierService{cfg: cfg, log: log}
}

func (s *SMTPNotifierService) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SendVerificationEmail emails the merchant their account-verification link.
func (s *SMTPNotifierService) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.BaseURL, token)
	body := fmt.Sprintf(`<p>Confirm your email address to activate your account:</p><p><a href="%s">%s</a></p>`, link, link)
	return s.send(toEmail, "Verify your email", body)
}

// SendPasswordResetEmail emails the merchant a one-time password reset link.
func (s *SMTPNotifierService) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.BaseURL, token)
	body := fmt.Sprintf(`<p>Reset your password using the link below. This link expires shortly.</p><p><a href="%s">%s</a></p>`, link, link)
	return s.send(toEmail, "Reset your password", body)
}

// SendInvoiceEmail emails the invoice's customer-portal link to the billed customer.
func (s *SMTPNotifierService) SendInvoiceEmail(ctx context.Context, toEmail string, invoice *domain.Invoice) error {
	if toEmail == "" {
		return nil
	}
	link := fmt.Sprintf("%s/invoices/%s", s.cfg.BaseURL, invoice.CustomerToken)
	body := fmt.Sprintf(`<p>Invoice %s from %s is ready for payment.</p><p><a href="%s">View invoice</a></p>`,
		invoice.InvoiceNumber, invoice.MerchantSnapshotName, link)
	return s.send(toEmail, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber), body)
}
