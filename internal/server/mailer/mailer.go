package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/models"
)

// Mailer dispatches welcome and reset emails asynchronously.
type Mailer struct {
	sender      Sender
	logger      logging.Logger
	frontendURL string
	resetTTL    time.Duration
	wg          sync.WaitGroup
}

// New returns a Mailer. resetTTL is quoted in reset emails.
func New(s Sender, l logging.Logger, frontendURL string, resetTTL time.Duration) *Mailer {
	return &Mailer{
		sender:      s,
		logger:      l.With("module", "mailer"),
		frontendURL: frontendURL,
		resetTTL:    resetTTL,
	}
}

// Welcome sends the account-created email in the background.
func (m *Mailer) Welcome(ctx context.Context, email, username string) {
	if email == "" {
		return
	}
	msg, err := WelcomeMessage(email, username, m.frontendURL)
	if err != nil {
		m.logger.Error(ctx, "render welcome email", "error", err)
		return
	}
	m.dispatch(ctx, msg)
}

// ResetCode sends the verification code for a password or PIN reset in the
// background. The code itself is logged only at debug level.
func (m *Mailer) ResetCode(ctx context.Context, email, code string, tokenType models.TokenType) {
	msg, err := ResetCodeMessage(email, code, tokenType, humanDuration(m.resetTTL))
	if err != nil {
		m.logger.Error(ctx, "render reset email", "error", err)
		return
	}
	m.logger.Debug(ctx, "reset code issued", "to", email, "type", string(tokenType), "code", code)
	m.dispatch(ctx, msg)
}

// Wait blocks until every dispatched email has been handed to the sender.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) dispatch(ctx context.Context, msg *Message) {
	// keep request values (request id) but not its cancellation
	ctx = context.WithoutCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.sender.Send(ctx, msg); err != nil {
			m.logger.Error(ctx, "email delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
			return
		}
		m.logger.Info(ctx, "email sent", "to", msg.To, "subject", msg.Subject)
	}()
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		d = time.Hour
	}
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}
