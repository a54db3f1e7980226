package lib

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type publishing struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func validatePost(title, category string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if models.NormalizeCategory(category) == "" {
		return errors.New("category is required")
	}
	return nil
}

// CreatePost persists the post and its dispatch job in one transaction, so a
// committed post always has a pending fan-out and the request never waits on
// delivery.
func (svc *publishing) CreatePost(ctx context.Context, authorID uint, kind, title, body, category string) (*models.Post, error) {
	if kind != models.KindNews && kind != models.KindArticle {
		return nil, fmt.Errorf("unsupported post kind: %s", kind)
	}
	if err := validatePost(title, category); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: authorID,
		Title:    title,
		Body:     body,
		Category: category,
		Kind:     kind,
		PostedAt: time.Now().UTC(),
	}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Returning{}).Create(post).Error; err != nil {
			return err
		}
		return tx.Create(&models.DispatchJob{
			PostID:   post.ID,
			Category: post.Category,
			Mutation: models.MutationCreated,
			Status:   models.JobPending,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	svc.log.Sugar().Infof("Created %s id:%v in category %q", post.Kind, post.ID, post.Category)
	return post, nil
}

// UpdatePost re-enqueues a fan-out even when the category is unchanged; every
// mutation re-notifies the current recipient set. Kind is not editable.
func (svc *publishing) UpdatePost(ctx context.Context, postID uint, title, body, category string) (*models.Post, error) {
	if err := validatePost(title, category); err != nil {
		return nil, err
	}

	post := &models.Post{}
	tx := svc.db.WithContext(ctx).First(post, postID)
	if err := tx.Error; err != nil {
		return nil, err
	}

	post.Title = title
	post.Body = body
	post.Category = category

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		return tx.Create(&models.DispatchJob{
			PostID:   post.ID,
			Category: post.Category,
			Mutation: models.MutationUpdated,
			Status:   models.JobPending,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	svc.log.Sugar().Infof("Updated %s id:%v in category %q", post.Kind, post.ID, post.Category)
	return post, nil
}

func (svc *publishing) DeletePost(ctx context.Context, postID uint) error {
	tx := svc.db.WithContext(ctx).Delete(&models.Post{}, postID)
	if err := tx.Error; err != nil {
		return err
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
