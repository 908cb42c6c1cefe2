// Package entity defines the domain models for the recipes feature.
package entity

// MaxImagePathLen is the width of the img_src column.
const MaxImagePathLen = 100

// Recipe is a user-submitted recipe with a cover image.
// (OwnerID, Title) is unique per owner; the same title may exist under other owners.
type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"column:title;size:100;not null"`
	Ingredients string `gorm:"column:ingredient;size:1000;not null"`
	Content     string `gorm:"column:content;size:2000;not null"`
	ImagePath   string `gorm:"column:img_src;size:100"`
	OwnerID     uint   `gorm:"column:user_id;index;not null"`
}

// TableName returns the table name for GORM.
func (Recipe) TableName() string {
	return "recipes"
}

// ListOptions controls recipe listing.
type ListOptions struct {
	// OwnerID filters to one owner. Zero lists every owner.
	OwnerID uint
	// MostRecentFirst orders by newest insert first instead of stored order.
	MostRecentFirst bool
}
