package postgres

import (
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Device{},
		&domain.LocationSample{},
		&domain.Alert{},
		&domain.BatteryStatus{},
		&domain.Reflector{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:      NewUserRepository(db),
		Device:    NewDeviceRepository(db),
		Location:  NewLocationRepository(db),
		Alert:     NewAlertRepository(db),
		Battery:   NewBatteryRepository(db),
		Reflector: NewReflectorRepository(db),
		Dashboard: NewDashboardRepository(db),
	}
}
