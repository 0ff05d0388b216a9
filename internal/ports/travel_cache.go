package ports

import "context"

// Persistent store for origin->destination results. Origin and destination
// keys are domain.Coordinates.Key values.
type TravelCache interface {
	GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, profile, origin string, results map[string]DistanceResult) error
}
