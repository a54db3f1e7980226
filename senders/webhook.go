package senders

import (
	"context"

	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
)

// webhookSender POSTs the notification to the recipient URL. The recipient
// field of a webhook-platform subscriber holds the target endpoint.
type webhookSender struct {
	base
}

type webhookPayload struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (w *webhookSender) Send(ctx context.Context, subject, body, recipient string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.sendTimeout(w.cfg.Webhook.TimeoutSecs))
	defer cancel()

	payload := webhookPayload{
		ID:      uuid.NewString(),
		Subject: subject,
		Body:    body,
	}
	err := requests.
		URL(recipient).
		Transport(w.transport).
		BodyJSON(&payload).
		Fetch(ctx)
	return payload.ID, err
}
