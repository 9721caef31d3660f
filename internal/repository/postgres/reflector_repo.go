package postgres

import (
	"context"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reflectorRepository struct {
	db *gorm.DB
}

func NewReflectorRepository(db *gorm.DB) *reflectorRepository {
	return &reflectorRepository{db: db}
}

func (r *reflectorRepository) Create(ctx context.Context, reflector *domain.Reflector) error {
	return r.db.WithContext(ctx).Create(reflector).Error
}

func (r *reflectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reflector, error) {
	var reflector domain.Reflector
	err := r.db.WithContext(ctx).First(&reflector, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reflector, nil
}

func (r *reflectorRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Reflector, error) {
	var reflectors []*domain.Reflector
	err := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.id = reflectors.device_id").
		Where("devices.user_id = ?", userID).
		Order("reflectors.last_seen DESC").
		Find(&reflectors).Error
	if err != nil {
		return nil, err
	}
	return reflectors, nil
}

func (r *reflectorRepository) Update(ctx context.Context, reflector *domain.Reflector) error {
	return r.db.WithContext(ctx).Save(reflector).Error
}

func (r *reflectorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Reflector{}, "id = ?", id).Error
}
