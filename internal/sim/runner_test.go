package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	cities []string
	calls  int
}

func (g *stubGeocoder) Reverse(_ context.Context, lat, lng float64) (*Place, error) {
	city := g.cities[len(g.cities)-1]
	if g.calls < len(g.cities) {
		city = g.cities[g.calls]
	}
	g.calls++
	return &Place{Street: "Osmena Blvd", City: city, DisplayName: city + " test"}, nil
}

type captureDeliverer struct {
	name    string
	err     error
	samples []*domain.LocationSample
}

func (d *captureDeliverer) Name() string { return d.name }

func (d *captureDeliverer) Deliver(_ context.Context, sample *domain.LocationSample) error {
	if d.err != nil {
		return d.err
	}
	d.samples = append(d.samples, sample)
	return nil
}

func TestRunner_AcceptanceLoop(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"Other City", "Other City", "Cebu City"}}
	sink := &captureDeliverer{name: "sink"}

	runner := NewRunner(Config{
		TargetCity: "Cebu City",
		Box:        MetroCebu,
	}, geocoder, []Deliverer{sink}, []uuid.UUID{deviceID})

	require.NoError(t, runner.Tick(context.Background(), deviceID))

	// Two misses, then the accepted candidate.
	assert.Equal(t, 3, geocoder.calls)
	require.Len(t, sink.samples, 1)

	sample := sink.samples[0]
	assert.Equal(t, deviceID, sample.DeviceID)
	assert.Equal(t, "Cebu City", sample.City)
	assert.Equal(t, "Osmena Blvd", sample.Street)
	assert.True(t, MetroCebu.Contains(Point{Lat: sample.Latitude, Lng: sample.Longitude}))
}

func TestRunner_MatchIsCaseInsensitiveSubstring(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"cebu city"}}
	sink := &captureDeliverer{name: "sink"}

	runner := NewRunner(Config{
		TargetCity: "Cebu City",
		Box:        MetroCebu,
	}, geocoder, []Deliverer{sink}, []uuid.UUID{deviceID})

	require.NoError(t, runner.Tick(context.Background(), deviceID))
	assert.Equal(t, 1, geocoder.calls)
	assert.Len(t, sink.samples, 1)
}

func TestRunner_ExhaustedAttemptsHoldPosition(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"Cebu City"}}
	sink := &captureDeliverer{name: "sink"}

	runner := NewRunner(Config{
		TargetCity:  "Cebu City",
		Box:         MetroCebu,
		MaxAttempts: 3,
	}, geocoder, []Deliverer{sink}, []uuid.UUID{deviceID})

	// Seed an accepted point.
	require.NoError(t, runner.Tick(context.Background(), deviceID))
	require.Len(t, sink.samples, 1)
	first := sink.samples[0]

	// Every subsequent lookup misses; the device must hold position.
	geocoder.cities = []string{"Mandaue"}
	geocoder.calls = 0

	require.NoError(t, runner.Tick(context.Background(), deviceID))
	assert.Equal(t, 3, geocoder.calls)
	require.Len(t, sink.samples, 2)

	held := sink.samples[1]
	assert.Equal(t, first.Latitude, held.Latitude)
	assert.Equal(t, first.Longitude, held.Longitude)
	assert.Equal(t, "Cebu City", held.City)
}

func TestRunner_ExhaustedAttemptsWithoutHistoryFail(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"Mandaue"}}
	sink := &captureDeliverer{name: "sink"}

	runner := NewRunner(Config{
		TargetCity:  "Cebu City",
		Box:         MetroCebu,
		MaxAttempts: 2,
	}, geocoder, []Deliverer{sink}, []uuid.UUID{deviceID})

	err := runner.Tick(context.Background(), deviceID)
	assert.Error(t, err)
	assert.Empty(t, sink.samples)
}

func TestRunner_DeliveryFallbackChain(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"Cebu City"}}

	failing := &captureDeliverer{name: "first", err: errors.New("unreachable")}
	backup := &captureDeliverer{name: "second"}
	unused := &captureDeliverer{name: "third"}

	runner := NewRunner(Config{
		TargetCity: "Cebu City",
		Box:        MetroCebu,
	}, geocoder, []Deliverer{failing, backup, unused}, []uuid.UUID{deviceID})

	require.NoError(t, runner.Tick(context.Background(), deviceID))

	assert.Empty(t, failing.samples)
	assert.Len(t, backup.samples, 1)
	assert.Empty(t, unused.samples, "chain must stop at the first success")
}

func TestRunner_AllChannelsFailing(t *testing.T) {
	deviceID := uuid.New()
	geocoder := &stubGeocoder{cities: []string{"Cebu City"}}
	failing := &captureDeliverer{name: "only", err: errors.New("unreachable")}

	runner := NewRunner(Config{
		TargetCity: "Cebu City",
		Box:        MetroCebu,
	}, geocoder, []Deliverer{failing}, []uuid.UUID{deviceID})

	assert.Error(t, runner.Tick(context.Background(), deviceID))
}
