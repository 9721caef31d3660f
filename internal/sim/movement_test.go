package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_DistanceRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	from := Point{Lat: 10.31, Lng: 123.89}

	var walks, drives int
	for i := 0; i < 1000; i++ {
		mv := Step(rng, from)

		switch mv.Mode {
		case ModeWalking:
			walks++
			assert.GreaterOrEqual(t, mv.Distance, 1.0)
			assert.LessOrEqual(t, mv.Distance, 8.0)
		case ModeDriving:
			drives++
			assert.GreaterOrEqual(t, mv.Distance, 15.0)
			assert.LessOrEqual(t, mv.Distance, 80.0)
		default:
			t.Fatalf("unexpected mode %q", mv.Mode)
		}

		// The flat-earth conversion must reproduce the drawn distance.
		dLat := (mv.Dest.Lat - from.Lat) * metersPerDegreeLat
		dLng := (mv.Dest.Lng - from.Lng) * metersPerDegreeLat * math.Cos(from.Lat*math.Pi/180)
		assert.InDelta(t, mv.Distance, math.Hypot(dLat, dLng), 0.01)
	}

	// 70/30 split, within statistical slack.
	assert.InDelta(t, 700, walks, 100)
	assert.InDelta(t, 300, drives, 100)
}

func TestBoundingBox_Clamp(t *testing.T) {
	box := MetroCebu

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{
			name: "inside is untouched",
			in:   Point{Lat: 10.31, Lng: 123.89},
			want: Point{Lat: 10.31, Lng: 123.89},
		},
		{
			name: "north overshoot sticks to the edge",
			in:   Point{Lat: 11.0, Lng: 123.89},
			want: Point{Lat: box.MaxLat, Lng: 123.89},
		},
		{
			name: "both axes clamped",
			in:   Point{Lat: 9.0, Lng: 125.0},
			want: Point{Lat: box.MinLat, Lng: box.MaxLng},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.Clamp(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, box.Contains(got))
		})
	}
}

func TestBoundingBox_RandomPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		assert.True(t, MetroCebu.Contains(MetroCebu.RandomPoint(rng)))
	}
}
