package sim

import (
	"math"
	"math/rand"
)

// Flat-earth approximation: good enough at city scale.
const metersPerDegreeLat = 111320.0

type Point struct {
	Lat float64
	Lng float64
}

type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// MetroCebu is the default simulation area.
var MetroCebu = BoundingBox{
	MinLat: 10.2599,
	MaxLat: 10.3599,
	MinLng: 123.8500,
	MaxLng: 123.9500,
}

func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Clamp pins a point to the box edge. A device that keeps heading outward
// sticks to the edge; acceptable for a demo feed.
func (b BoundingBox) Clamp(p Point) Point {
	if p.Lat < b.MinLat {
		p.Lat = b.MinLat
	}
	if p.Lat > b.MaxLat {
		p.Lat = b.MaxLat
	}
	if p.Lng < b.MinLng {
		p.Lng = b.MinLng
	}
	if p.Lng > b.MaxLng {
		p.Lng = b.MaxLng
	}
	return p
}

func (b BoundingBox) RandomPoint(rng *rand.Rand) Point {
	return Point{
		Lat: b.MinLat + rng.Float64()*(b.MaxLat-b.MinLat),
		Lng: b.MinLng + rng.Float64()*(b.MaxLng-b.MinLng),
	}
}

type MovementMode string

const (
	ModeWalking MovementMode = "walking"
	ModeDriving MovementMode = "driving"
)

type Movement struct {
	Dest     Point
	Mode     MovementMode
	Distance float64 // meters
	Heading  float64 // radians, 0 = east
}

// Step advances from a point by a random movement: 70% walking (1-8 m),
// 30% driving (15-80 m), uniform heading.
func Step(rng *rand.Rand, from Point) Movement {
	mode := ModeWalking
	var distance float64
	if rng.Float64() < 0.7 {
		distance = 1 + rng.Float64()*7
	} else {
		mode = ModeDriving
		distance = 15 + rng.Float64()*65
	}

	heading := rng.Float64() * 2 * math.Pi

	dLat := distance * math.Sin(heading) / metersPerDegreeLat
	dLng := distance * math.Cos(heading) / (metersPerDegreeLat * math.Cos(from.Lat*math.Pi/180))

	return Movement{
		Dest:     Point{Lat: from.Lat + dLat, Lng: from.Lng + dLng},
		Mode:     mode,
		Distance: distance,
		Heading:  heading,
	}
}
