package mailer

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/config"
)

const (
	verificationSubject = "Email verification request"
	resetSubject        = "Password reset request"
)

// Notifier renders account emails and hands them to a Transport. Links point
// at the web client, which posts the token back to the API.
type Notifier struct {
	transport Transport
	from      string
	baseURL   string
	logger    logging.Logger
	now       func() time.Time
}

func NewNotifier(t Transport, cfg *config.Config, logger logging.Logger) *Notifier {
	return &Notifier{
		transport: t,
		from:      cfg.SMTPFrom,
		baseURL:   strings.TrimRight(cfg.CORSOrigin, "/"),
		logger:    logger.With("module", "mailer"),
		now:       time.Now,
	}
}

func (n *Notifier) link(kind, token string) string {
	return fmt.Sprintf("%s/%s/%s", n.baseURL, kind, url.PathEscape(token))
}

func (n *Notifier) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := html.EscapeString(n.link("verify-email", token))
	body := fmt.Sprintf(`Thank you for registering. Please click the following link to verify your email address: <a href="%s" target="_blank">Verify Email</a>. If the link is not clickable, please copy and paste it into your browser.`, link)

	return n.send(ctx, newMessage(n.from, to, verificationSubject, body, n.now()))
}

func (n *Notifier) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link := html.EscapeString(n.link("reset-password", token))
	body := fmt.Sprintf(`You have requested to reset your password. Please click the following link to reset your password: <a href="%s" target="_blank">Reset Password</a>. If the link is not clickable, please copy and paste it into your browser.`, link)

	return n.send(ctx, newMessage(n.from, to, resetSubject, body, n.now()))
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	if err := n.transport.Send(ctx, msg); err != nil {
		n.logger.Error(ctx, "mail delivery failed", "subject", msg.Subject, "error", err)
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	n.logger.Debug(ctx, "mail sent", "id", msg.ID, "subject", msg.Subject)
	return nil
}
