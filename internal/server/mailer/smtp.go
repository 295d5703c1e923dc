package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dmitrijs2005/tasktrack/internal/server/config"
	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the submissions port; anything else dials plain and
// upgrades with STARTTLS when the server offers it.
const implicitTLSPort = 465

type SMTPTransport struct {
	host     string
	port     int
	username string
	password string

	tlsConfig *tls.Config
}

func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	return &SMTPTransport{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		tlsConfig: &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
	}
}

func (t *SMTPTransport) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.port),
		mail.WithTLSConfig(t.tlsConfig),
	}
	if t.port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.username),
			mail.WithPassword(t.password),
		)
	}
	return opts
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := msg.build()
	if err != nil {
		return err
	}

	c, err := mail.NewClient(t.host, t.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if err := c.Send(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
