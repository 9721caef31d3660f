package service

import (
	"github.com/gabaylakad/backend/internal/config"
	"github.com/gabaylakad/backend/internal/repository"
)

type Services struct {
	Auth     *AuthService
	Location *LocationService
}

func NewServices(repos *repository.Repositories, sessions repository.SessionStore, mailer Mailer, cfg *config.Config) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Device, sessions, mailer, cfg),
		Location: NewLocationService(repos.Location, repos.Device),
	}
}
