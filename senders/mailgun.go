package senders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mailgun/mailgun-go/v4"
)

type mailgunSender struct {
	base
	mg mailgun.Mailgun
}

func newMailgunSender(b base) *mailgunSender {
	mg := mailgun.NewMailgun(b.cfg.Mailgun.Domain, b.cfg.Mailgun.APIKey)
	mg.SetClient(&http.Client{Transport: b.transport})
	return &mailgunSender{base: b, mg: mg}
}

func (e *mailgunSender) Send(ctx context.Context, subject, body, recipient string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.sendTimeout(e.cfg.Mailgun.TimeoutSecs))
	defer cancel()

	// The body goes in via SetHtml so the message carries the right MIME type.
	message := e.mg.NewMessage(e.cfg.Mailgun.SenderFrom, subject, "", recipient)
	message.SetHtml(body)

	_, id, err := e.mg.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("mailgun send to %s: %w", recipient, err)
	}
	return id, nil
}
