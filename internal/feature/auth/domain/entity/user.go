// Package entity defines the domain entities for the auth feature.
package entity

// User represents a registered user in the system.
// It contains authentication credentials and the administrator role flag.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// UserName is the display name used for login.
	// Uniqueness is checked by the application before insert.
	UserName string `gorm:"column:user_name;size:50;not null"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	PasswordHash string `gorm:"column:password_hash;size:128;not null"`

	// Administrator grants access to every recipe regardless of ownership.
	Administrator bool `gorm:"column:administrator;not null;default:false"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
