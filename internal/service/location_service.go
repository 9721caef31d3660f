package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Broadcaster fans a location update out to connected realtime listeners.
type Broadcaster interface {
	BroadcastLocation(sample *domain.LocationSample)
}

type LocationService struct {
	locations   repository.LocationRepository
	devices     repository.DeviceRepository
	broadcaster Broadcaster
}

func NewLocationService(locations repository.LocationRepository, devices repository.DeviceRepository) *LocationService {
	return &LocationService{
		locations: locations,
		devices:   devices,
	}
}

// AttachBroadcaster wires the realtime channel. Wiring happens after
// construction because the hub needs the service and the service needs
// the hub.
func (s *LocationService) AttachBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Record persists a sample and pushes it to realtime listeners. Coordinates
// are rounded to 6 decimal places before storage.
func (s *LocationService) Record(ctx context.Context, sample *domain.LocationSample) error {
	if _, err := s.devices.GetByID(ctx, sample.DeviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDeviceNotFound
		}
		return err
	}

	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	sample.Latitude = round6(sample.Latitude)
	sample.Longitude = round6(sample.Longitude)

	if err := s.locations.Create(ctx, sample); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastLocation(sample)
	}

	return nil
}

func (s *LocationService) Latest(ctx context.Context, deviceID uuid.UUID) (*domain.LocationSample, error) {
	sample, err := s.locations.LatestByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sample, nil
}

func (s *LocationService) History(ctx context.Context, deviceID uuid.UUID, limit, offset int) ([]*domain.LocationSample, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.locations.HistoryByDeviceID(ctx, deviceID, limit, offset)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
