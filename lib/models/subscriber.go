package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlatformEmail   = "email"
	PlatformWebhook = "webhook"
)

type Subscriber struct {
	gorm.Model
	UserID           uint   `gorm:"index:idx_user_category,unique"`
	Category         string `gorm:"index:idx_user_category,unique"`
	Platform         string `gorm:"default:email"`
	Address          string // delivery override; empty means the account email
	UnsubscribeToken string `gorm:"uniqueIndex"`

	User User
}

type Subscribers []Subscriber

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	s.Category = NormalizeCategory(s.Category)
	if s.UnsubscribeToken == "" {
		s.UnsubscribeToken = uuid.NewString()
	}
	return nil
}
