package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"farmlink/internal/types"
)

// RouteService resolves driving distance through the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DistanceKm returns the driving distance of the first route leg.
// Identical endpoints short-circuit to zero without an API call.
func (s *RouteService) DistanceKm(ctx context.Context, pickup, destination types.Location) (float64, error) {
	if pickup == destination {
		return 0, nil
	}
	r := &maps.DirectionsRequest{
		Origin:      pickup.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	return metersToKm(routes[0].Legs[0].Distance.Meters), nil
}

func metersToKm(m int) float64 {
	return float64(m) / 1000.0
}
