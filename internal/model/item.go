package model

import "time"

// Item is a resource listed by an owner. The Available flag gates new
// reservations only; flipping it later does not touch existing ones.
type Item struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	OwnerID     int64     `gorm:"index;not null" json:"ownerId"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Available   bool      `gorm:"not null" json:"available"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Associations
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
