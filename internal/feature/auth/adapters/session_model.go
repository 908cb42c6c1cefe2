package adapters

import (
	"time"

	"recipebook/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID            string    `gorm:"primaryKey;size:64"`
	UserID        uint      `gorm:"index;not null"`
	UserName      string    `gorm:"size:50;not null"`
	Administrator bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:            m.ID,
		UserID:        m.UserID,
		UserName:      m.UserName,
		Administrator: m.Administrator,
		CreatedAt:     m.CreatedAt,
		ExpiresAt:     m.ExpiresAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:            s.ID,
		UserID:        s.UserID,
		UserName:      s.UserName,
		Administrator: s.Administrator,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}
