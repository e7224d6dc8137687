package model

import "time"

// User is a party known to the service: a requester, an owner, or both.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
