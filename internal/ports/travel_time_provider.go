package ports

import (
	"context"
	"osrm-travel-tools/internal/domain"
)

// Travel distance and duration between two locations, in the routing
// server's native units.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving travel distance and duration between coordinates.
type TravelTimeProvider interface {
	// Return the best route between two points. A nil result with a nil
	// error means the routing server found no route.
	Route(ctx context.Context, profile string, from, to domain.Coordinates) (*DistanceResult, error)

	// Return a len(origins) x len(destinations) grid. Unreachable cells are nil.
	Table(ctx context.Context, profile string, origins, destinations []domain.Coordinates) ([][]*DistanceResult, error)
}
