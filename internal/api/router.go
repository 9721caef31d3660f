package api

import (
	"net/http"

	"github.com/gabaylakad/backend/internal/api/handlers"
	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/gabaylakad/backend/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, repos *repository.Repositories) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	r.Get("/health", handlers.Health)
	r.Post("/log", handlers.ClientLog)

	authHandler := handlers.NewAuthHandler(services.Auth)
	deviceHandler := handlers.NewDeviceHandler(repos.Device)
	locationHandler := handlers.NewLocationHandler(services.Location, repos.Location, repos.Device)
	alertHandler := handlers.NewAlertHandler(repos.Alert, repos.Device)
	batteryHandler := handlers.NewBatteryHandler(repos.Battery, repos.Device)
	reflectorHandler := handlers.NewReflectorHandler(repos.Reflector, repos.Device)
	dashboardHandler := handlers.NewDashboardHandler(repos.Dashboard)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/refresh-token", authHandler.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.List)
				r.Post("/", deviceHandler.Create)
				r.Get("/{id}", deviceHandler.Get)
				r.Put("/{id}", deviceHandler.Update)
				r.Delete("/{id}", deviceHandler.Delete)
				r.Get("/{id}/locations", locationHandler.DeviceHistory)
				r.Get("/{id}/locations/latest", locationHandler.DeviceLatest)
			})

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", locationHandler.List)
				r.Post("/", locationHandler.Create)
				r.Get("/{id}", locationHandler.Get)
				r.Put("/{id}", locationHandler.Update)
				r.Delete("/{id}", locationHandler.Delete)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.List)
				r.Post("/", alertHandler.Create)
				r.Get("/{id}", alertHandler.Get)
				r.Put("/{id}", alertHandler.Update)
				r.Delete("/{id}", alertHandler.Delete)
			})

			r.Route("/batteries", func(r chi.Router) {
				r.Get("/", batteryHandler.List)
				r.Post("/", batteryHandler.Create)
				r.Get("/{id}", batteryHandler.Get)
				r.Put("/{id}", batteryHandler.Update)
				r.Delete("/{id}", batteryHandler.Delete)
			})

			r.Route("/reflectors", func(r chi.Router) {
				r.Get("/", reflectorHandler.List)
				r.Post("/", reflectorHandler.Create)
				r.Get("/{id}", reflectorHandler.Get)
				r.Put("/{id}", reflectorHandler.Update)
				r.Delete("/{id}", reflectorHandler.Delete)
			})

			r.Get("/dashboard", dashboardHandler.Overview)
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
