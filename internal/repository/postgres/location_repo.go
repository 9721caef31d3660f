package postgres

import (
	"context"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *locationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, sample *domain.LocationSample) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LocationSample, error) {
	var sample domain.LocationSample
	err := r.db.WithContext(ctx).First(&sample, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *locationRepository) LatestByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.LocationSample, error) {
	var sample domain.LocationSample
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at DESC").
		First(&sample).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *locationRepository) HistoryByDeviceID(ctx context.Context, deviceID uuid.UUID, limit, offset int) ([]*domain.LocationSample, error) {
	var samples []*domain.LocationSample
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *locationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LocationSample, error) {
	var samples []*domain.LocationSample
	err := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.id = location_samples.device_id").
		Where("devices.user_id = ?", userID).
		Order("location_samples.recorded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *locationRepository) Update(ctx context.Context, sample *domain.LocationSample) error {
	return r.db.WithContext(ctx).Save(sample).Error
}

func (r *locationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LocationSample{}, "id = ?", id).Error
}
