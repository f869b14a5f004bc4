package profiles

import (
	"context"
	"testing"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/auth"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/profiles/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	svc := NewProfileService(&db.DB{Bun: dbtest.NewDB(t)}, logger.NewNopLogger())
	ctx := context.Background()

	profile, err := svc.GetOrCreate(ctx, &models.Claims{Subject: "u1", Email: "grace@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, "grace", profile.FullName, "falls back to the email local part")
	assert.Equal(t, "grace@campus.edu", profile.Email)

	updated, err := svc.Update(ctx, &models.Claims{Subject: "u1"}, models.ProfileUpdate{FullName: "Grace Hopper", Year: 2})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", updated.FullName)

	again, err := svc.GetOrCreate(ctx, &models.Claims{Subject: "u1", Name: "Ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", again.FullName)

	_, err = svc.Update(ctx, &models.Claims{Subject: "u1"}, models.ProfileUpdate{FullName: "G", Year: 2})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.GetOrCreate(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func newRoleService(t *testing.T) (*RoleService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRoleService(&db.DB{Bun: dbtest.NewDB(t)}, auth.NewRoleCache(client, time.Minute), logger.NewNopLogger()), mr
}

func TestRoleService_CacheAndInvalidate(t *testing.T) {
	svc, mr := newRoleService(t)
	ctx := context.Background()

	ok, err := svc.HasAnyRole(ctx, "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("user_roles:u1"), "empty role list is cached")

	require.NoError(t, svc.Grant(ctx, models.RoleGrant{UserID: "u1", Role: models.RoleAdmin}, "root"))
	assert.False(t, mr.Exists("user_roles:u1"), "grant invalidates the cache")

	ok, err = svc.HasAnyRole(ctx, "u1", models.RoleScanner, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Revoke(ctx, models.RoleGrant{UserID: "u1", Role: models.RoleAdmin}, "root"))
	ok, err = svc.HasAnyRole(ctx, "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Grant(ctx, models.RoleGrant{UserID: "u1", Role: "superuser"}, "root")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRoleService_FallsBackWhenCacheDown(t *testing.T) {
	svc, mr := newRoleService(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, models.RoleGrant{UserID: "u2", Role: models.RoleScanner}, "root"))

	mr.Close()

	ok, err := svc.HasAnyRole(ctx, "u2", models.RoleScanner)
	require.NoError(t, err)
	assert.True(t, ok)
}
