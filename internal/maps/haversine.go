package maps

import (
	"context"
	"math"

	"farmlink/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineRouter estimates distance as the great-circle distance scaled by a road factor.
// It is used when no Maps API key is configured.
type HaversineRouter struct {
	// RoadFactor compensates for roads not being straight lines. Zero means 1.
	RoadFactor float64
}

func (h HaversineRouter) DistanceKm(_ context.Context, pickup, destination types.Location) (float64, error) {
	d := haversineKm(pickup.Lat, pickup.Lng, destination.Lat, destination.Lng)
	if h.RoadFactor > 0 {
		d *= h.RoadFactor
	}
	return d, nil
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
