package postgres

import (
	"context"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *alertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	err := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.id = alerts.device_id").
		Where("devices.user_id = ?", userID).
		Order("alerts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *alertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Alert{}, "id = ?", id).Error
}
