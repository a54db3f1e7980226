package senders

import (
	"context"
	"net/http"
	"time"

	"github.com/newsdesk/newsdesk/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, subject, body, recipient string) (string, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	return map[string]Sender{
		"email":   newMailgunSender(base),
		"webhook": &webhookSender{base},
	}
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}

func (b base) sendTimeout(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
