package services

import (
	"context"
	"errors"
	"fmt"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
)

// TableMatrix computes the many-to-many travel matrix between origins and
// destinations with a single provider table call.
//
// Durations are returned in minutes and distances in kilometers. Rows follow
// the order of origins and columns the order of destinations; unreachable
// cells are nil.
func TableMatrix(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	origins []domain.Place,
	destinations []domain.Place,
	profile string,
) (_ *domain.TravelMatrix, err error) {
	defer obs.Time(ctx, "services.TableMatrix")(&err)

	if provider == nil {
		return nil, errors.New("table matrix: provider must be non-nil")
	}
	if len(origins) == 0 {
		return nil, errors.New("table matrix: origins must be non-empty")
	}
	if len(destinations) == 0 {
		return nil, errors.New("table matrix: destinations must be non-empty")
	}

	originCoords, originNames, err := splitPlaces(origins)
	if err != nil {
		return nil, fmt.Errorf("table matrix: origins: %w", err)
	}
	destCoords, destNames, err := splitPlaces(destinations)
	if err != nil {
		return nil, fmt.Errorf("table matrix: destinations: %w", err)
	}

	rows, err := provider.Table(ctx, profile, originCoords, destCoords)
	if err != nil {
		return nil, fmt.Errorf("table matrix: %w", err)
	}

	if len(rows) != len(origins) {
		return nil, fmt.Errorf("table matrix: provider returned %d rows, want %d", len(rows), len(origins))
	}

	m := &domain.TravelMatrix{
		Origins:      originNames,
		Destinations: destNames,
		Durations:    make([][]*float64, len(origins)),
		Distances:    make([][]*float64, len(origins)),
	}

	for i, row := range rows {
		if len(row) != len(destinations) {
			return nil, fmt.Errorf("table matrix: row %d has %d cells, want %d", i, len(row), len(destinations))
		}

		m.Durations[i] = make([]*float64, len(row))
		m.Distances[i] = make([]*float64, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			minutes := domain.SecondsToMinutes(cell.DurationSeconds)
			km := domain.MetersToKm(cell.DistanceMeters)
			m.Durations[i][j] = &minutes
			m.Distances[i][j] = &km
		}
	}

	return m, nil
}

func splitPlaces(places []domain.Place) ([]domain.Coordinates, []string, error) {
	coords := make([]domain.Coordinates, len(places))
	names := make([]string, len(places))
	for i, p := range places {
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("#%d: %w", i+1, err)
		}
		coords[i] = p.Coordinates
		names[i] = p.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("%d", i)
		}
	}
	return coords, names, nil
}
