package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/yashpatel08/railsathi/internal/platform/ctxutil"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	SSLTLS   bool
	Timeout  time.Duration
}

type smtpMailer struct {
	log *logger.Logger
	cfg SMTPConfig
}

func NewSMTPMailer(log *logger.Logger, cfg SMTPConfig) (Mailer, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, fmt.Errorf("missing MAIL_SERVER")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("missing MAIL_FROM")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &smtpMailer{log: log.With("client", "SMTPMailer"), cfg: cfg}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	ctx = ctxutil.Default(ctx)
	out, err := m.buildMessage(msg)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send via %s:%d: %w", m.cfg.Server, m.cfg.Port, err)
	}
	return nil
}

func (m *smtpMailer) client() (*gomail.Client, error) {
	host := strings.TrimSpace(m.cfg.Server)
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(m.cfg.Timeout),
		gomail.WithTLSConfig(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}),
	}
	switch {
	case m.cfg.SSLTLS:
		opts = append(opts, gomail.WithSSL())
	case m.cfg.StartTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	c, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// buildMessage encodes the body quoted-printable so long description lines
// are folded below the RFC 5322 limit.
func (m *smtpMailer) buildMessage(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg(gomail.WithEncoding(gomail.EncodingQP), gomail.WithCharset(gomail.CharsetUTF8))
	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", m.cfg.From, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail: invalid recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()
	out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	return out, nil
}
