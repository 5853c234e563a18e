package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gomail "gopkg.in/mail.v2"

	"pypln-web/internal/config"
)

// AdminMailer notifies the site administrators.
type AdminMailer interface {
	MailAdmins(ctx context.Context, subject, body string) error
}

const subjectPrefix = "[PyPLN] "

func New(cfg config.MailConfig, log *slog.Logger) AdminMailer {
	if cfg.Backend == "smtp" {
		return NewSMTPMailer(cfg)
	}
	return NewConsoleMailer(cfg.Admins, log)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	admins []string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		admins: cfg.Admins,
	}
}

func (m *SMTPMailer) MailAdmins(ctx context.Context, subject, body string) error {
	if len(m.admins) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.admins...)
	msg.SetHeader("Subject", subjectPrefix+subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send admin mail failed: %w", err)
	}
	return nil
}

// ConsoleMailer logs mails instead of sending them and keeps a copy of each
// one for inspection.
type ConsoleMailer struct {
	admins []string
	log    *slog.Logger

	mu   sync.Mutex
	sent []Message
}

type Message struct {
	To      []string
	Subject string
	Body    string
}

func NewConsoleMailer(admins []string, log *slog.Logger) *ConsoleMailer {
	if log == nil {
		log = slog.Default()
	}
	return &ConsoleMailer{admins: admins, log: log}
}

func (m *ConsoleMailer) MailAdmins(ctx context.Context, subject, body string) error {
	msg := Message{To: m.admins, Subject: subjectPrefix + subject, Body: body}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.log.InfoContext(ctx, "admin mail", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
