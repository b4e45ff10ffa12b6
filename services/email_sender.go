package services

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/gomail.v2"

	"counsellor-console/config"
	"counsellor-console/logger"
)

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends email via SMTP with gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if from == "" {
		return nil, fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}
	if !cfg.SMTPConfigured() {
		return nil, fmt.Errorf("smtp credentials not configured (set SMTP_USER and SMTP_PASS)")
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("🔄 Sending email via SMTP - Recipient: %s", to)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Error("❌ Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("✅ Email successfully sent to: %s", to)
	return nil
}

// SentEmail is an email captured by LogSender.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// LogSender logs emails instead of sending them. Used when SMTP is not configured.
type LogSender struct {
	mu   sync.Mutex
	Sent []SentEmail
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	logger.Info("📧 (smtp disabled) email to %s: %s", to, subject)
	return nil
}

// NewEmailSender picks SMTP when configured and LogSender otherwise.
func NewEmailSender(cfg *config.Config) EmailSender {
	if !cfg.SMTPConfigured() {
		logger.Warn("SMTP is not configured; notification emails will only be logged")
		return &LogSender{}
	}
	s, err := NewSMTPSender(cfg)
	if err != nil {
		logger.Warn("SMTP sender unavailable: %v; notification emails will only be logged", err)
		return &LogSender{}
	}
	return s
}
