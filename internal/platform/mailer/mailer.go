package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

// Message is one outbound plain-text email.
type Message struct {
	To      []string
	Subject string
	Text    string
}

// Mailer delivers a message. A nil error means the transport accepted it for
// every recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Transport string

const (
	TransportSMTP     Transport = "smtp"
	TransportSendGrid Transport = "sendgrid"
	TransportLog      Transport = "log"
)

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: at least one recipient required")
	}
	for _, to := range msg.To {
		if !strings.Contains(to, "@") {
			return fmt.Errorf("mail: invalid recipient %q", to)
		}
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("mail: subject required")
	}
	return nil
}

type logMailer struct {
	log *logger.Logger
}

// NewLogMailer logs messages instead of delivering them.
func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("client", "LogMailer")}
}

func (m *logMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	m.log.Info("email suppressed (log transport)",
		"recipients", len(msg.To),
		"subject", msg.Subject,
		"body_bytes", len(msg.Text),
	)
	return nil
}
