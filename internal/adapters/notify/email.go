// internal/adapters/notify/email.go
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/internal/pkg/config"
)

// EmailNotifier delivers notifications over SMTP. In development it only
// logs the message so the worker can run without a mail relay.
type EmailNotifier struct {
	config *config.Config
	logger *slog.Logger
}

var _ ports.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an SMTP-backed notifier
func NewEmailNotifier(cfg *config.Config, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		config: cfg,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends one message to one user
func (n *EmailNotifier) Notify(ctx context.Context, user ports.User, subject, body string) error {
	n.logger.InfoContext(ctx, "sending notification",
		slog.String("to", user.Email),
		slog.String("subject", subject))

	if n.config.IsDevelopment() {
		n.logger.InfoContext(ctx, "notification would be sent",
			slog.String("to", user.Email),
			slog.String("subject", subject),
			slog.String("body", body))
		return nil
	}

	relay := n.config.SMTP
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		relay.From, user.Email, subject, body,
	))

	var auth smtp.Auth
	if relay.Username != "" {
		auth = smtp.PlainAuth("", relay.Username, relay.Password, relay.Host)
	}

	addr := net.JoinHostPort(relay.Host, relay.Port)
	if err := smtp.SendMail(addr, auth, relay.From, []string{user.Email}, msg); err != nil {
		return fmt.Errorf("failed to send notification to %s: %w", user.Email, err)
	}

	return nil
}
