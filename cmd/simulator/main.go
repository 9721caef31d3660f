package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabaylakad/backend/internal/repository/postgres"
	"github.com/gabaylakad/backend/internal/sim"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	apiURL := flag.String("api", envOr("API_URL", "http://localhost:8080"), "Backend API URL")
	email := flag.String("email", envOr("SIM_EMAIL", ""), "Account email (required)")
	password := flag.String("password", envOr("SIM_PASSWORD", ""), "Account password (required)")
	interval := flag.Duration("interval", 5*time.Second, "Tick interval")
	city := flag.String("city", "Cebu City", "Locality samples must resolve to")
	geocodeURL := flag.String("geocoder", envOr("NOMINATIM_URL", "https://nominatim.openstreetmap.org"), "Nominatim-compatible endpoint")
	maxAttempts := flag.Int("max-attempts", 10, "Geocode acceptance attempts per tick")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Enables direct database delivery as the last fallback")
	once := flag.Bool("once", false, "Run a single tick per device and exit")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if *email == "" || *password == "" {
		fmt.Println("Error: -email and -password (or SIM_EMAIL / SIM_PASSWORD) are required")
		flag.Usage()
		os.Exit(1)
	}

	client := NewAPIClient(*apiURL)

	user, err := client.Login(*email, *password)
	if err != nil {
		zap.L().Fatal("login failed", zap.Error(err))
	}
	zap.L().Info("logged in", zap.String("email", user.Email))

	apiDevices, err := client.ListDevices()
	if err != nil {
		zap.L().Fatal("listing devices failed", zap.Error(err))
	}
	if len(apiDevices) == 0 {
		zap.L().Fatal("account has no devices to simulate")
	}

	devices := make([]uuid.UUID, 0, len(apiDevices))
	for _, d := range apiDevices {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			zap.L().Fatal("device id is not a UUID", zap.String("id", d.ID))
		}
		devices = append(devices, id)
	}

	wsDel, err := newWSDeliverer(*apiURL, client)
	if err != nil {
		zap.L().Fatal("building websocket deliverer failed", zap.Error(err))
	}
	defer wsDel.Close()

	deliverers := []sim.Deliverer{
		wsDel,
		&apiDeliverer{client: client},
	}

	if *databaseURL != "" {
		db, err := postgres.NewConnection(*databaseURL)
		if err != nil {
			zap.L().Fatal("database connection failed", zap.Error(err))
		}
		repos := postgres.NewRepositories(db)
		deliverers = append(deliverers, sim.NewStoreDeliverer(repos.Location))
	}

	runner := sim.NewRunner(sim.Config{
		Interval:    *interval,
		TargetCity:  *city,
		Box:         sim.MetroCebu,
		MaxAttempts: *maxAttempts,
	}, sim.NewNominatimClient(*geocodeURL), deliverers, devices)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		runner.TickAll(ctx)
		return
	}

	runner.Run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
