package lib

import (
	"context"
	"errors"
	"time"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBadCredentials = errors.New("invalid email or password")

type accounts struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (svc *accounts) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleReader,
	}
	tx := svc.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(user)
	if err := tx.Error; err != nil {
		return nil, err
	}

	svc.log.Sugar().Infof("Created user %v (%s)", user.ID, email)
	return user, nil
}

func (svc *accounts) Login(ctx context.Context, email, password string) (string, error) {
	user := models.User{}
	tx := svc.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrBadCredentials
	} else if err != nil {
		return "", err
	}

	if !checkPassword(password, user.PasswordHash) {
		return "", ErrBadCredentials
	}

	tx = svc.db.WithContext(ctx).Model(&user).Update("last_login_at", time.Now().UTC())
	if err := tx.Error; err != nil {
		return "", err
	}

	return GenerateToken(svc.cfg.JWTSecret, &user)
}

// BecomeAuthor upgrades a reader to the author role. Admins keep their role.
func (svc *accounts) BecomeAuthor(ctx context.Context, userID uint) (*models.User, error) {
	user := models.User{}
	tx := svc.db.WithContext(ctx).First(&user, userID)
	if err := tx.Error; err != nil {
		return nil, err
	}

	if user.Role != models.RoleReader {
		return &user, nil
	}

	tx = svc.db.WithContext(ctx).Model(&user).Update("role", models.RoleAuthor)
	if err := tx.Error; err != nil {
		return nil, err
	}
	user.Role = models.RoleAuthor

	svc.log.Sugar().Infof("User %v is now an author", user.ID)
	return &user, nil
}

func (svc *accounts) FindUser(ctx context.Context, userID uint) (*models.User, error) {
	user := &models.User{}
	tx := svc.db.WithContext(ctx).First(user, userID)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return user, nil
}
