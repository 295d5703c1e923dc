// Package mailer sends the account emails. A Notifier renders the verification
// and reset messages; a Transport delivers them over SMTP, drops them into an
// S3 bucket, or only logs them.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Message is a single-part HTML email.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	HTML    string
	Date    time.Time
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

func newMessage(from, to, subject, html string, now time.Time) Message {
	return Message{
		ID:      uuid.NewString(),
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Date:    now,
	}
}

// build converts m into a go-mail message: UTF-8, quoted-printable HTML body.
func (m Message) build() (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(m.Date)
	msg.SetMessageIDWithValue(m.ID + "@tasktrack")
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Bytes renders m as an RFC 5322 message.
func (m Message) Bytes() ([]byte, error) {
	msg, err := m.build()
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if _, err := msg.WriteTo(&b); err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}
	return b.Bytes(), nil
}
