// Package mail delivers transactional email. Delivery failures are the
// caller's problem to log, never to roll back on.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"investnest.backend/pkg/logger"
)

// Mailer sends verification codes to users
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// SMTPMailer sends mail through an SMTP relay using gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given SMTP relay
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendVerificationCode emails the 6-digit code
func (m *SMTPMailer) SendVerificationCode(_ context.Context, to, name, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your InvestNest verification code")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>",
		name, code,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}

// LogMailer logs codes instead of sending them. Used in development and
// whenever no SMTP host is configured.
type LogMailer struct{}

// SendVerificationCode logs the code at debug level
func (LogMailer) SendVerificationCode(ctx context.Context, to, _, code string) error {
	logger.Debug(ctx, "verification code issued (mail disabled)",
		zap.String("to", to),
		zap.String("code", code),
	)
	return nil
}
