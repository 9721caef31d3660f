package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
)

// ErrKeyNotFound is returned by SessionStore.Get when the key is absent
// or its TTL has elapsed.
var ErrKeyNotFound = errors.New("session key not found")

// SessionStore is the TTL-capable key-value capability backing refresh
// sessions and the access-token denylist. There is deliberately no delete:
// revocation is an overwrite with a short TTL, matching what the weakest
// supported backend offers.
type SessionStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error)
	GetBySerialNumber(ctx context.Context, serial string) (*domain.Device, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Device, error)
	Update(ctx context.Context, device *domain.Device) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LocationRepository interface {
	Create(ctx context.Context, sample *domain.LocationSample) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LocationSample, error)
	LatestByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.LocationSample, error)
	HistoryByDeviceID(ctx context.Context, deviceID uuid.UUID, limit, offset int) ([]*domain.LocationSample, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LocationSample, error)
	Update(ctx context.Context, sample *domain.LocationSample) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Alert, error)
	Update(ctx context.Context, alert *domain.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BatteryRepository interface {
	Create(ctx context.Context, status *domain.BatteryStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BatteryStatus, error)
	LatestByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.BatteryStatus, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.BatteryStatus, error)
	Update(ctx context.Context, status *domain.BatteryStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReflectorRepository interface {
	Create(ctx context.Context, reflector *domain.Reflector) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reflector, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Reflector, error)
	Update(ctx context.Context, reflector *domain.Reflector) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeviceOverview is one row of the dashboard aggregation.
type DeviceOverview struct {
	Device          *domain.Device         `json:"device"`
	LatestLocation  *domain.LocationSample `json:"latestLocation"`
	LatestBattery   *domain.BatteryStatus  `json:"latestBattery"`
	UnresolvedCount int64                  `json:"unresolvedAlerts"`
}

type DashboardRepository interface {
	OverviewByUserID(ctx context.Context, userID uuid.UUID) ([]*DeviceOverview, error)
}

type Repositories struct {
	User      UserRepository
	Device    DeviceRepository
	Location  LocationRepository
	Alert     AlertRepository
	Battery   BatteryRepository
	Reflector ReflectorRepository
	Dashboard DashboardRepository
}
