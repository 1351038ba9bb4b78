package gateway

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	"github.com/simplesats/ticket-sales/pkg/config"
)

// EmailMessage is a single outbound email
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// EmailSender delivers transactional email. Implementations must be
// safe for concurrent use.
type EmailSender interface {
	// Configured reports whether the sender can deliver at all
	Configured() bool
	Send(ctx context.Context, msg *EmailMessage) error
}

// SMTPEmailSender sends email over SMTP via gomail
type SMTPEmailSender struct {
	cfg config.SMTPConfig
}

// NewSMTPEmailSender creates a new SMTPEmailSender
func NewSMTPEmailSender(cfg config.SMTPConfig) *SMTPEmailSender {
	return &SMTPEmailSender{cfg: cfg}
}

// Configured reports whether host, port and from address are all set
func (s *SMTPEmailSender) Configured() bool {
	return s.cfg.IsComplete()
}

// Send delivers one message. Dial errors and rejections come back
// verbatim so callers can surface them.
func (s *SMTPEmailSender) Send(ctx context.Context, msg *EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
