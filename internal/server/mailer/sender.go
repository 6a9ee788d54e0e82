// Package mailer renders and dispatches account emails. Delivery runs in the
// background and failures are logged, never returned to the request.
package mailer

import (
	"context"
	"fmt"

	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/config"
	"gopkg.in/gomail.v2"
)

// Mail provider names accepted in configuration.
const (
	ProviderSMTP = "smtp"
	ProviderLog  = "log"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// dialer is the part of gomail.Dialer used by SMTPSender.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	d        dialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, user, password, from, fromName string) *SMTPSender {
	return &SMTPSender{
		d:        gomail.NewDialer(host, port, user, password),
		from:     from,
		fromName: fromName,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender only records that a message would have been sent.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	s.logger.Info(ctx, "mail not delivered (log provider)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender picks the Sender configured by cfg.MailProvider.
func NewSender(cfg *config.Config, l logging.Logger) (Sender, error) {
	switch cfg.MailProvider {
	case ProviderSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName), nil
	case ProviderLog, "":
		return NewLogSender(l), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
