package lib

import (
	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry

	*accounts
	*publishing
	*subscriptions
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, db *gorm.DB, senders senders.Registry) *Service {
	return &Service{
		cfg, log, db, senders,
		&accounts{cfg, log, db},
		&publishing{cfg, log, db},
		&subscriptions{cfg, log, db, senders},
	}
}
