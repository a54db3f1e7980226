package lib

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/newsdesk/newsdesk/senders"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu         sync.Mutex
	recipients []string
	err        error
}

func (f *fakeSender) Send(ctx context.Context, subject, body, recipient string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.recipients = append(f.recipients, recipient)
	return "msg-1", nil
}

func newTestService(t *testing.T) (*Service, *fakeSender, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Subscriber{},
		&models.DispatchJob{},
	))

	fake := &fakeSender{}
	cfg := &config.Config{
		ServerDNS: "http://localhost:8080",
		JWTSecret: "test-secret",
	}
	svc := NewService(nil, cfg, zap.NewNop(), db, senders.Registry{
		models.PlatformEmail:   fake,
		models.PlatformWebhook: fake,
	})
	return svc, fake, db
}

func seedAuthor(t *testing.T, svc *Service) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "author@x.com", "hunter22")
	require.NoError(t, err)
	user, err = svc.BecomeAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	return user
}
