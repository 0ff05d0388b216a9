package distance

import (
	"context"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/ports"
)

// Average road speeds (km/h) per OSRM profile for offline estimates.
var profileSpeedKmh = map[string]float64{
	"driving": 30,
	"car":     30,
	"cycling": 15,
	"bike":    15,
	"walking": 5,
	"foot":    5,
}

// EstimateProvider answers without a routing server: great-circle distance
// times a detour factor, at a fixed speed per profile. It backs the demo's
// offline mode.
type EstimateProvider struct {
	DetourFactor float64
}

func NewEstimateProvider() *EstimateProvider {
	return &EstimateProvider{DetourFactor: 1.3}
}

func (e *EstimateProvider) Route(ctx context.Context, profile string, from, to domain.Coordinates) (*ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}

	speed, ok := profileSpeedKmh[profile]
	if !ok {
		speed = profileSpeedKmh["driving"]
	}

	km := domain.HaversineKm(from, to) * e.DetourFactor
	return &ports.DistanceResult{
		DistanceMeters:  km * 1000,
		DurationSeconds: km / speed * 3600,
	}, nil
}

func (e *EstimateProvider) Table(ctx context.Context, profile string, origins, destinations []domain.Coordinates) ([][]*ports.DistanceResult, error) {
	out := make([][]*ports.DistanceResult, len(origins))
	for i, o := range origins {
		out[i] = make([]*ports.DistanceResult, len(destinations))
		for j, d := range destinations {
			r, err := e.Route(ctx, profile, o, d)
			if err != nil {
				return nil, err
			}
			out[i][j] = r
		}
	}
	return out, nil
}
