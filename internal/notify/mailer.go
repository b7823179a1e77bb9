package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"lingochat-backend/internal/config"
	"lingochat-backend/pkg/logger"
)

// Mailer sends the onboarding emails.
type Mailer interface {
	// SendWelcome greets a newly onboarded user.
	SendWelcome(ctx context.Context, name, email string) error
	// NotifySender tells the operator that a user signed up.
	NotifySender(ctx context.Context, name, email string) error
}

// NewMailer returns an SMTP mailer, or a no-op mailer when email is disabled.
func NewMailer(cfg config.EmailConfig) Mailer {
	if !cfg.Enabled {
		return NopMailer{}
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.EmailConfig
	send sendFunc
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, name, email string) error {
	body := fmt.Sprintf("Hi %s,\n\nWelcome to LingoChat! You can now translate, detect and summarize text right from your chats.\n", name)
	return m.deliver(ctx, email, "Welcome to LingoChat", body)
}

func (m *SMTPMailer) NotifySender(ctx context.Context, name, email string) error {
	if m.cfg.NotifyTo == "" {
		return nil
	}
	body := fmt.Sprintf("A new user finished onboarding.\n\nName: %s\nEmail: %s\n", name, email)
	return m.deliver(ctx, m.cfg.NotifyTo, "New LingoChat user", body)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := buildMessage(from, to, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		logger.Infof("Mail %q sent to %s", subject, to)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

type NopMailer struct{}

func (NopMailer) SendWelcome(context.Context, string, string) error  { return nil }
func (NopMailer) NotifySender(context.Context, string, string) error { return nil }
