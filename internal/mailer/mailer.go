package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/Pratham722007/Hackout-25/internal/config"
)

// Mailer delivers alert emails. Failures are the caller's concern; the
// implementations never retry on their own.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Builder{}
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("alert email sent", "recipients", len(to), "subject", subject)
	return nil
}

// LogMailer logs instead of sending. Used when SMTP is not configured so
// local development still shows what would have gone out.
type LogMailer struct{}

func (LogMailer) Send(to []string, subject, body string) error {
	slog.Info("email delivery skipped (SMTP not configured)",
		"recipients", len(to), "subject", subject)
	return nil
}

// FromConfig picks a real or logging mailer based on configuration.
func FromConfig(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
