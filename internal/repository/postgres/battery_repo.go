package postgres

import (
	"context"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type batteryRepository struct {
	db *gorm.DB
}

func NewBatteryRepository(db *gorm.DB) *batteryRepository {
	return &batteryRepository{db: db}
}

func (r *batteryRepository) Create(ctx context.Context, status *domain.BatteryStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *batteryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BatteryStatus, error) {
	var status domain.BatteryStatus
	err := r.db.WithContext(ctx).First(&status, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *batteryRepository) LatestByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.BatteryStatus, error) {
	var status domain.BatteryStatus
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at DESC").
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *batteryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.BatteryStatus, error) {
	var statuses []*domain.BatteryStatus
	err := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.id = battery_statuses.device_id").
		Where("devices.user_id = ?", userID).
		Order("battery_statuses.recorded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *batteryRepository) Update(ctx context.Context, status *domain.BatteryStatus) error {
	return r.db.WithContext(ctx).Save(status).Error
}

func (r *batteryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.BatteryStatus{}, "id = ?", id).Error
}
