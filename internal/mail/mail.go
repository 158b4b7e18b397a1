package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"github.com/aysel-mammadli/expense_tracker/internal/contextutil"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/aysel-mammadli/expense_tracker/logging"
)

// SMTPMailer delivers verification codes over plain SMTP. See the
// environment variables read by NewMailerFromEnv.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewMailerFromEnv picks the mailer from SMTP_* environment variables.
// Without SMTP_HOST the codes are only written to the log, which is enough
// for local development.
func NewMailerFromEnv() expense.OTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logging.Logger.Warn("SMTP_HOST is not set, OTP codes will be logged instead of emailed")
		return &LogMailer{}
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, email string, code string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	from := m.from
	if from == "" {
		from = m.user
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\nYour verification code is %s. It expires in 10 minutes.\r\n",
		from, email, code,
	))

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.host+":"+m.port, auth, from, []string{email}, msg); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to send otp email to %s | Error: %v", traceID, email, err)
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

// LogMailer writes the code to the application log instead of sending it.
type LogMailer struct{}

func (m *LogMailer) SendOTP(ctx context.Context, email string, code string) error {
	logging.Logger.Infof("OTP for %s: %s", email, code)
	return nil
}
