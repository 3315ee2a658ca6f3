package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

func TestAdminLogin(t *testing.T) {
	store := &fakeAdminStore{users: map[string]*models.AdminUser{}}
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	svc := NewAdminAuthService(store, tokens)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@shop.test", "hunter22", "Admin"))
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@shop.test", "other", "Admin"))
	assert.Len(t, store.users, 1)

	token, err := svc.Login(context.Background(), "admin@shop.test", "hunter22")
	require.NoError(t, err)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", claims.Email)

	_, err = svc.Login(context.Background(), "admin@shop.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "ghost@shop.test", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	store.users["admin@shop.test"].IsActive = false
	_, err = svc.Login(context.Background(), "admin@shop.test", "hunter22")
	assert.ErrorIs(t, err, ErrAccountInactive)
}
