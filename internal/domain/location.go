package domain

import (
	"time"

	"github.com/google/uuid"
)

// LocationSample is one append-only telemetry point for a device.
// Coordinates are stored rounded to 6 decimal places.
type LocationSample struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DeviceID uuid.UUID `json:"deviceId" gorm:"type:uuid;not null;index"`
	Device   *Device   `json:"-" gorm:"foreignKey:DeviceID"`

	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`

	// Kinematics, optional.
	Speed    *float64 `json:"speed,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`

	// Reverse-geocode enrichment, optional.
	Street      string   `json:"street,omitempty"`
	City        string   `json:"city,omitempty"`
	PlaceName   string   `json:"placeName,omitempty"`
	ContextTag  string   `json:"contextTag,omitempty"`
	NearestPOI  string   `json:"nearestPoi,omitempty"`
	POIDistance *float64 `json:"poiDistance,omitempty"`

	RecordedAt time.Time `json:"recordedAt" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
}
