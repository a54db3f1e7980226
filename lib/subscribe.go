package lib

import (
	"context"
	"errors"
	"fmt"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/newsdesk/newsdesk/senders"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptions struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry
}

// Subscribe persists the subscriber first, then acknowledges over the chosen
// platform. The confirmation send is best-effort: its failure never unwinds
// the record.
func (svc *subscriptions) Subscribe(ctx context.Context, userID uint, category, platform, address string) (*models.Subscriber, error) {
	if models.NormalizeCategory(category) == "" {
		return nil, errors.New("category is required")
	}
	if platform == "" {
		platform = models.PlatformEmail
	}
	if _, ok := svc.senders[platform]; !ok {
		return nil, fmt.Errorf("unknown delivery platform: %s", platform)
	}
	// Only email can fall back to the account address.
	if address == "" && platform != models.PlatformEmail {
		return nil, fmt.Errorf("address is required for %s delivery", platform)
	}

	user := models.User{}
	tx := svc.db.WithContext(ctx).First(&user, userID)
	if err := tx.Error; err != nil {
		return nil, err
	}

	sub := &models.Subscriber{
		UserID:   userID,
		Category: category,
		Platform: platform,
		Address:  address,
	}
	tx = svc.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	if err := tx.Error; err != nil {
		return nil, err
	}

	// Reload the canonical row: on a duplicate subscribe the insert was a
	// no-op and the generated token above never hit the database.
	tx = svc.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("category = ?", sub.Category).
		First(sub)
	if err := tx.Error; err != nil {
		return nil, err
	}

	svc.sendConfirmation(ctx, &user, sub)

	svc.log.Sugar().Infof("User %v subscribed to category %q", userID, sub.Category)
	return sub, nil
}

func (svc *subscriptions) sendConfirmation(ctx context.Context, user *models.User, sub *models.Subscriber) {
	format := senders.SubscribedEmail{
		Category:       sub.Category,
		UnsubscribeURL: fmt.Sprintf("%s/unsubscribe/%s", svc.cfg.ServerDNS, sub.UnsubscribeToken),
	}

	recipient := sub.Address
	if recipient == "" {
		recipient = user.Email
	}

	sender := svc.senders[sub.Platform]
	id, err := sender.Send(ctx, format.Subject(), format.Body(), recipient)
	if err != nil {
		svc.log.Sugar().Infow("Failed to send subscription confirmation", "err", err)
	} else {
		svc.log.Sugar().Infow("Sent subscription confirmation to "+recipient, "message_id", id)
	}
}

func (svc *subscriptions) Unsubscribe(ctx context.Context, token string) (bool, error) {
	sub := models.Subscriber{}
	tx := svc.db.WithContext(ctx).Where("unsubscribe_token = ?", token).First(&sub)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	// Hard delete: a soft-deleted row would still occupy the (user, category)
	// unique index and block re-subscribing.
	tx = svc.db.WithContext(ctx).Unscoped().Delete(&sub)
	if err := tx.Error; err != nil {
		return false, err
	}
	return true, nil
}
