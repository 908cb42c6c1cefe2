package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authadapters "recipebook/internal/feature/auth/adapters"
	"recipebook/internal/feature/auth/domain/entity"
	authusecase "recipebook/internal/feature/auth/usecase"
	platformdb "recipebook/internal/platform/db"
)

// newAdmin returns an auth usecase over an in-memory database with two users.
func newAdmin(t *testing.T) Admin {
	t.Helper()
	admin, _ := newAdminDB(t)
	return admin
}

func newAdminDB(t *testing.T) (Admin, *gorm.DB) {
	t.Helper()

	db, err := platformdb.OpenSQLite(":memory:", &entity.User{}, &authadapters.SessionModel{})
	require.NoError(t, err)
	require.NoError(t, db.Create(&entity.User{UserName: "ann", PasswordHash: "x"}).Error)
	require.NoError(t, db.Create(&entity.User{UserName: "bob", PasswordHash: "x", Administrator: true}).Error)

	admin := authusecase.NewAuthUsecase(
		authadapters.NewUserRepository(db),
		authadapters.NewSessionRepository(db),
		time.Hour,
	)
	return admin, db
}

func TestRun_Usage(t *testing.T) {
	admin := newAdmin(t)
	ctx := context.Background()

	tests := [][]string{
		nil,
		{"drop-tables"},
		{"set-admin"},
		{"set-admin", "-id", "x"},
		{"clear-users"},
	}
	for _, args := range tests {
		var out bytes.Buffer
		assert.ErrorIs(t, run(ctx, args, &out, admin), errUsage, "%v", args)
	}
}

func TestRun_ListUsers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"list-users"}, &out, newAdmin(t)))

	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "ann")
	assert.Regexp(t, `2\s+bob\s+true`, out.String())
}

func TestRun_SetAdmin(t *testing.T) {
	admin := newAdmin(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"set-admin", "-id", "1"}, &out, admin))
	assert.Contains(t, out.String(), "user 1 (ann) administrator=true")

	ann, err := admin.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ann.Administrator)

	out.Reset()
	require.NoError(t, run(ctx, []string{"set-admin", "-id", "2", "-value=false"}, &out, admin))
	bob, err := admin.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.False(t, bob.Administrator)

	err = run(ctx, []string{"set-admin", "-id", "99"}, &out, admin)
	assert.ErrorIs(t, err, authusecase.ErrUserNotFound)
}

func TestRun_ClearUsers(t *testing.T) {
	admin, db := newAdminDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&authadapters.SessionModel{ID: "sid", UserID: 1, UserName: "ann", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}).Error)

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"clear-users", "-yes"}, &out, admin))

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	var sessions int64
	require.NoError(t, db.Model(&authadapters.SessionModel{}).Count(&sessions).Error)
	assert.Zero(t, sessions)
}

func TestRun_PurgeSessions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"purge-sessions"}, &out, newAdmin(t)))
	assert.Contains(t, out.String(), "purged 0 expired sessions")
}
