package domain

import (
	"time"

	"github.com/google/uuid"
)

// Device is one physical smart cane, identified by its serial number.
// A serial number is bound to at most one user.
type Device struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SerialNumber string     `json:"serialNumber" gorm:"uniqueIndex;not null"`
	UserID       *uuid.UUID `json:"userId" gorm:"type:uuid;index"`
	User         *User      `json:"-" gorm:"foreignKey:UserID"`
	Nickname     string     `json:"nickname"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
