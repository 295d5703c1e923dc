package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/config"
)

// NewTransport picks the delivery mechanism named by cfg.MailTransport.
func NewTransport(ctx context.Context, cfg *config.Config, logger logging.Logger) (Transport, error) {
	switch cfg.MailTransport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp transport needs SMTP_HOST")
		}
		return NewSMTPTransport(cfg), nil
	case "s3":
		return NewS3Drop(ctx, cfg)
	case "log", "":
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}
