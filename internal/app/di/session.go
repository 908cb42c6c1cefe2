package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "recipebook/internal/feature/auth/adapters"
	"recipebook/internal/feature/auth/usecase"
	"recipebook/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL sessions table.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionRepository(db)
}
