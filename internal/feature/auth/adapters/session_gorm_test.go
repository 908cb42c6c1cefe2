package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipebook/internal/feature/auth/domain/entity"
	"recipebook/internal/feature/auth/usecase"
)

// seedSession creates a test session in the database for testing.
func seedSession(t *testing.T, db *gorm.DB, id string, userID uint, expiresAt time.Time) *entity.Session {
	t.Helper()

	session := &SessionModel{
		ID:        id,
		UserID:    userID,
		UserName:  "ann",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(session).Error, "failed to seed session")

	return session.ToEntity()
}

func TestSessionGorm_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seedID  string
		session *entity.Session
		wantErr bool
	}{
		{
			name: "success: session creation",
			session: &entity.Session{
				ID:            "session-001",
				UserID:        1,
				UserName:      "ann",
				Administrator: true,
				CreatedAt:     time.Now(),
				ExpiresAt:     time.Now().Add(time.Hour),
			},
		},
		{
			name:   "failure: duplicate session ID",
			seedID: "duplicate-id",
			session: &entity.Session{
				ID:        "duplicate-id",
				UserID:    1,
				UserName:  "ann",
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(time.Hour),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewSessionRepository(db)
			if tt.seedID != "" {
				seedSession(t, db, tt.seedID, 1, time.Now().Add(time.Hour))
			}

			err := repo.Create(context.Background(), tt.session)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var found SessionModel
			require.NoError(t, db.Where("id = ?", tt.session.ID).First(&found).Error)
			assert.Equal(t, tt.session.UserID, found.UserID)
			assert.Equal(t, tt.session.Administrator, found.Administrator)
		})
	}
}

func TestSessionGorm_FindByID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	seedSession(t, db, "live", 7, time.Now().Add(time.Hour))

	found, err := repo.FindByID(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint(7), found.UserID)
	assert.Equal(t, "ann", found.UserName)

	found, err = repo.FindByID(context.Background(), "missing")
	assert.Nil(t, found)
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionGorm_Delete(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	seedSession(t, db, "to-delete", 1, time.Now().Add(time.Hour))

	require.NoError(t, repo.Delete(context.Background(), "to-delete"))
	_, err := repo.FindByID(context.Background(), "to-delete")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)

	assert.NoError(t, repo.Delete(context.Background(), "never-existed"))
}

func TestSessionGorm_DeleteExpired(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	seedSession(t, db, "expired-1", 1, time.Now().Add(-1*time.Hour))
	seedSession(t, db, "expired-2", 1, time.Now().Add(-2*time.Hour))
	seedSession(t, db, "active", 1, time.Now().Add(time.Hour))

	deleted, err := repo.DeleteExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "should delete 2 expired sessions")

	var count int64
	db.Model(&SessionModel{}).Count(&count)
	assert.Equal(t, int64(1), count, "only active session should remain")
}

func TestSessionGorm_Clear(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	seedSession(t, db, "expired", 1, time.Now().Add(-time.Hour))
	seedSession(t, db, "active", 2, time.Now().Add(time.Hour))

	require.NoError(t, repo.Clear(context.Background()))

	var count int64
	db.Model(&SessionModel{}).Count(&count)
	assert.Zero(t, count)
}
