package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deliverer pushes a finished sample somewhere. The runner tries its
// deliverers in order and stops at the first success.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, sample *domain.LocationSample) error
}

type Config struct {
	Interval    time.Duration
	TargetCity  string
	Box         BoundingBox
	MaxAttempts int
}

type Runner struct {
	cfg        Config
	geocoder   ReverseGeocoder
	deliverers []Deliverer
	devices    []uuid.UUID
	last       map[uuid.UUID]acceptedPoint
	rng        *rand.Rand
}

type acceptedPoint struct {
	point Point
	place *Place
}

func NewRunner(cfg Config, geocoder ReverseGeocoder, deliverers []Deliverer, devices []uuid.UUID) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	return &Runner{
		cfg:        cfg,
		geocoder:   geocoder,
		deliverers: deliverers,
		devices:    devices,
		last:       make(map[uuid.UUID]acceptedPoint),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks at a fixed rate until the context is cancelled. Devices are
// advanced sequentially within a tick; a tick that overruns the interval
// simply delays the next one.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	zap.L().Info("simulator started",
		zap.Duration("interval", r.cfg.Interval),
		zap.String("targetCity", r.cfg.TargetCity),
		zap.Int("devices", len(r.devices)))

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("simulator stopped")
			return
		case <-ticker.C:
			r.TickAll(ctx)
		}
	}
}

func (r *Runner) TickAll(ctx context.Context) {
	for _, deviceID := range r.devices {
		if err := r.Tick(ctx, deviceID); err != nil {
			zap.L().Warn("tick failed",
				zap.String("deviceId", deviceID.String()), zap.Error(err))
		}
	}
}

// Tick advances one device and delivers the resulting sample.
func (r *Runner) Tick(ctx context.Context, deviceID uuid.UUID) error {
	sample, err := r.NextSample(ctx, deviceID)
	if err != nil {
		return err
	}
	return r.deliver(ctx, sample)
}

// NextSample runs the movement step plus the geofence acceptance loop:
// candidates whose resolved locality does not contain the target city are
// discarded and replaced with a fresh uniform draw. The loop is bounded;
// when every attempt misses, the device stays at its last accepted point.
func (r *Runner) NextSample(ctx context.Context, deviceID uuid.UUID) (*domain.LocationSample, error) {
	prev, hasPrev := r.last[deviceID]

	var candidate Point
	var mode MovementMode
	var distance float64
	var heading float64

	if hasPrev {
		mv := Step(r.rng, prev.point)
		candidate = r.cfg.Box.Clamp(mv.Dest)
		mode, distance, heading = mv.Mode, mv.Distance, mv.Heading
	} else {
		candidate = r.cfg.Box.RandomPoint(r.rng)
		mode = ModeWalking
	}

	var accepted *Place
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		place, err := r.geocoder.Reverse(ctx, candidate.Lat, candidate.Lng)
		if err != nil {
			return nil, fmt.Errorf("reverse geocode: %w", err)
		}

		if strings.Contains(strings.ToLower(place.City), strings.ToLower(r.cfg.TargetCity)) {
			accepted = place
			break
		}

		candidate = r.cfg.Box.RandomPoint(r.rng)
		mode, distance, heading = ModeWalking, 0, 0
	}

	if accepted == nil {
		if !hasPrev {
			return nil, fmt.Errorf("no candidate inside %q after %d attempts", r.cfg.TargetCity, r.cfg.MaxAttempts)
		}
		// Hold position rather than emit an out-of-area point.
		candidate = prev.point
		accepted = prev.place
		mode, distance, heading = ModeWalking, 0, 0
	}

	r.last[deviceID] = acceptedPoint{point: candidate, place: accepted}

	speed := distance / r.cfg.Interval.Seconds()
	headingDeg := heading * 180 / math.Pi

	return &domain.LocationSample{
		DeviceID:   deviceID,
		Latitude:   round6(candidate.Lat),
		Longitude:  round6(candidate.Lng),
		Speed:      &speed,
		Heading:    &headingDeg,
		Street:     accepted.Street,
		City:       accepted.City,
		PlaceName:  accepted.DisplayName,
		ContextTag: string(mode),
		RecordedAt: time.Now(),
	}, nil
}

// deliver walks the fallback chain, moving on only when a channel errors.
func (r *Runner) deliver(ctx context.Context, sample *domain.LocationSample) error {
	var lastErr error
	for _, d := range r.deliverers {
		if err := d.Deliver(ctx, sample); err != nil {
			zap.L().Debug("delivery channel failed",
				zap.String("channel", d.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("no delivery channels configured")
	}
	return fmt.Errorf("all delivery channels failed: %w", lastErr)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
