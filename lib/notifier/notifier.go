package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/metrics"
	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/newsdesk/newsdesk/senders"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStoreUnavailable marks a failed subscriber query. The pass is aborted
// with no sends attempted; the committed post write is never affected.
var ErrStoreUnavailable = errors.New("subscriber store unavailable")

// DeliveryError is one recipient's failed send.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Result counts one fan-out pass.
type Result struct {
	Attempted int
	Failed    int
}

type Notifier struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry
}

func New(cfg *config.Config, log *zap.Logger, db *gorm.DB, senders senders.Registry) *Notifier {
	return &Notifier{cfg, log, db, senders}
}

// Notify fans out one post mutation: every subscriber whose category equals
// the job's category gets exactly one send. Per-recipient failures never stop
// the loop; they are collected into the returned aggregate error.
func (n *Notifier) Notify(ctx context.Context, job *models.DispatchJob) (Result, error) {
	post := &models.Post{}
	tx := n.db.WithContext(ctx).First(post, job.PostID)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		// Post deleted between commit and dispatch; nothing to notify.
		return Result{}, nil
	} else if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var subs models.Subscribers
	tx = n.db.WithContext(ctx).
		Where("category = ?", job.Category).
		InnerJoins("User").
		Find(&subs)
	if err := tx.Error; err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	excerpt := Excerpt(post.Body, 280)

	var result Result
	var errs error
	for _, sub := range subs {
		result.Attempted++
		if err := n.send(ctx, post, &sub, excerpt); err != nil {
			result.Failed++
			errs = multierr.Append(errs, err)
		}
	}
	return result, errs
}

func (n *Notifier) send(ctx context.Context, post *models.Post, sub *models.Subscriber, excerpt string) error {
	recipient := sub.Address
	if recipient == "" {
		recipient = sub.User.Email
	}

	sender, ok := n.senders[sub.Platform]
	if !ok {
		err := fmt.Errorf("no sender for platform %q", sub.Platform)
		metrics.RecordDelivery(sub.Platform, err)
		return &DeliveryError{Recipient: recipient, Err: err}
	}

	format := senders.NewPostEmail{
		Post:           post,
		Excerpt:        excerpt,
		UnsubscribeURL: fmt.Sprintf("%s/unsubscribe/%s", n.cfg.ServerDNS, sub.UnsubscribeToken),
	}

	id, err := sender.Send(ctx, format.Subject(), format.Body(), recipient)
	metrics.RecordDelivery(sub.Platform, err)
	if err != nil {
		n.log.Sugar().Warnw("Failed to deliver notification", "recipient", recipient, "err", err)
		return &DeliveryError{Recipient: recipient, Err: err}
	}

	n.log.Sugar().Infow("Notified "+recipient, "post_id", post.ID, "message_id", id)
	return nil
}
