package mailer

import (
	"context"

	"github.com/yashpatel08/railsathi/internal/platform/sendgrid"
)

type sendGridMailer struct {
	client sendgrid.Client
}

// NewSendGridMailer sends through the SendGrid REST API. The sender comes
// from the client's defaults.
func NewSendGridMailer(client sendgrid.Client) Mailer {
	return &sendGridMailer{client: client}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	to := make([]sendgrid.EmailAddress, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, sendgrid.EmailAddress{Email: addr})
	}
	_, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         to,
		Subject:    msg.Subject,
		Text:       msg.Text,
		Categories: []string{"complaint_created"},
	})
	return err
}
