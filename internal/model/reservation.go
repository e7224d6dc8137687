package model

import "time"

// Status is the approval state of a reservation.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	// StatusCanceled is a reserved value: stored rows may carry it, but no
	// operation in this service produces it.
	StatusCanceled Status = "CANCELED"
)

// Reservation is a request to use an item over [start, end).
// Rows are never deleted; the lifecycle is status-only.
type Reservation struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ItemID      int64     `gorm:"index;not null" json:"itemId"`
	RequesterID int64     `gorm:"index;not null" json:"requesterId"`
	StartAt     time.Time `gorm:"not null;index" json:"start"`
	EndAt       time.Time `gorm:"not null" json:"end"`
	Status      Status    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Associations
	Item      Item `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Requester User `gorm:"foreignKey:RequesterID" json:"-"`
}
