package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AlertType string

const (
	AlertTypeFall       AlertType = "fall"
	AlertTypeObstacle   AlertType = "obstacle"
	AlertTypeSOS        AlertType = "sos"
	AlertTypeLowBattery AlertType = "low_battery"
	AlertTypeGeofence   AlertType = "geofence"
)

type Alert struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID uuid.UUID `json:"deviceId" gorm:"type:uuid;not null;index"`
	Device   *Device   `json:"-" gorm:"foreignKey:DeviceID"`

	Type     AlertType      `json:"type" gorm:"not null"`
	Message  string         `json:"message"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	Resolved bool           `json:"resolved" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
}

type BatteryStatus struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID uuid.UUID `json:"deviceId" gorm:"type:uuid;not null;index"`
	Device   *Device   `json:"-" gorm:"foreignKey:DeviceID"`

	Level      int       `json:"level" gorm:"not null"`
	Charging   bool      `json:"charging"`
	Voltage    float64   `json:"voltage"`
	RecordedAt time.Time `json:"recordedAt" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Reflector reports the state of the cane's night-visibility reflector unit.
type Reflector struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID uuid.UUID `json:"deviceId" gorm:"type:uuid;not null;index"`
	Device   *Device   `json:"-" gorm:"foreignKey:DeviceID"`

	Status   string    `json:"status" gorm:"not null"`
	LastSeen time.Time `json:"lastSeen"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
