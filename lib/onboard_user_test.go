package lib

import (
	"context"
	"testing"

	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "reader@x.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	token, err := svc.Login(context.Background(), "reader@x.com", "hunter22")
	require.NoError(t, err)

	principal, err := ParseToken(svc.cfg.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, models.RoleReader, principal.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "reader@x.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "reader@x.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(context.Background(), "nobody@x.com", "hunter22")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "reader@x.com", "hunter22")
	require.NoError(t, err)

	token, err := GenerateToken("other-secret", user)
	require.NoError(t, err)

	_, err = ParseToken(svc.cfg.JWTSecret, token)
	assert.Error(t, err)
}

func TestBecomeAuthor(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "reader@x.com", "hunter22")
	require.NoError(t, err)

	user, err = svc.BecomeAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, user.Role)

	// Idempotent; does not demote other roles either.
	user, err = svc.BecomeAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, user.Role)
}

func TestRolePermissions(t *testing.T) {
	assert.False(t, HasPermission(models.RoleReader, PermAddPost))
	assert.True(t, HasPermission(models.RoleAuthor, PermAddPost))
	assert.True(t, HasPermission(models.RoleAuthor, PermChangePost))
	assert.False(t, HasPermission(models.RoleAuthor, PermDeletePost))
	assert.True(t, HasPermission(models.RoleAdmin, PermDeletePost))
	assert.False(t, HasPermission("unknown", PermAddPost))
}
