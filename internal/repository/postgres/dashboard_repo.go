package postgres

import (
	"context"
	"errors"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

// OverviewByUserID joins a caregiver's devices with their latest location,
// latest battery reading, and open alert count. One query per concern per
// device; the device counts here are single digits.
func (r *dashboardRepository) OverviewByUserID(ctx context.Context, userID uuid.UUID) ([]*repository.DeviceOverview, error) {
	var devices []*domain.Device
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}

	overviews := make([]*repository.DeviceOverview, 0, len(devices))
	for _, device := range devices {
		ov := &repository.DeviceOverview{Device: device}

		var loc domain.LocationSample
		err = r.db.WithContext(ctx).
			Where("device_id = ?", device.ID).
			Order("recorded_at DESC").
			First(&loc).Error
		if err == nil {
			ov.LatestLocation = &loc
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var bat domain.BatteryStatus
		err = r.db.WithContext(ctx).
			Where("device_id = ?", device.ID).
			Order("recorded_at DESC").
			First(&bat).Error
		if err == nil {
			ov.LatestBattery = &bat
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		err = r.db.WithContext(ctx).
			Model(&domain.Alert{}).
			Where("device_id = ? AND resolved = false", device.ID).
			Count(&ov.UnresolvedCount).Error
		if err != nil {
			return nil, err
		}

		overviews = append(overviews, ov)
	}

	return overviews, nil
}
