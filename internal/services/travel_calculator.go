package services

import (
	"context"
	"errors"
	"fmt"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"osrm-travel-tools/internal/tabular"
	"time"

	"go.uber.org/zap"
)

const (
	TravelTimeColumn = "travel_time_minutes"
	DistanceColumn   = "distance_km"
)

// ColumnBindings names the input columns holding each OD pair's coordinates.
type ColumnBindings struct {
	OriginLat string
	OriginLon string
	DestLat   string
	DestLon   string
}

// TravelTimeCalculator computes pairwise travel times for tabular OD pairs,
// one provider route call per row.
type TravelTimeCalculator struct {
	Profile  string
	Provider ports.TravelTimeProvider

	// sleep waits between calls; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewTravelTimeCalculator(profile string, provider ports.TravelTimeProvider) *TravelTimeCalculator {
	return &TravelTimeCalculator{
		Profile:  profile,
		Provider: provider,
		sleep:    sleepContext,
	}
}

// PairwiseResult keeps the input rows alongside their computed results.
type PairwiseResult struct {
	Pairs   *tabular.Table
	Results []domain.TravelResult
}

// Table returns the input columns plus travel_time_minutes and distance_km,
// formatted with the given decimals (negative for full precision).
// Rows without a route get empty cells.
func (r *PairwiseResult) Table(decimals int) (*tabular.Table, error) {
	values := make([][]string, len(r.Results))
	for i, res := range r.Results {
		values[i] = []string{
			tabular.FormatFloat(roundPtr(res.DurationMinutes, decimals), decimals),
			tabular.FormatFloat(roundPtr(res.DistanceKm, decimals), decimals),
		}
	}
	return r.Pairs.WithColumns([]string{TravelTimeColumn, DistanceColumn}, values)
}

// CalculateTravelMatrix routes every row of pairs, waiting delay between
// consecutive calls as a courtesy to the routing server. All coordinates are
// parsed and validated before the first call.
func (c *TravelTimeCalculator) CalculateTravelMatrix(
	ctx context.Context,
	pairs *tabular.Table,
	cols ColumnBindings,
	delay time.Duration,
) (_ *PairwiseResult, err error) {
	defer obs.Time(ctx, "services.CalculateTravelMatrix")(&err)

	if c.Provider == nil {
		return nil, errors.New("calculate travel matrix: provider must be non-nil")
	}
	if pairs == nil {
		return nil, errors.New("calculate travel matrix: pairs table must be non-nil")
	}
	if delay < 0 {
		return nil, fmt.Errorf("calculate travel matrix: delay must be >= 0, got %s", delay)
	}

	odPairs, err := parsePairs(pairs, cols)
	if err != nil {
		return nil, fmt.Errorf("calculate travel matrix: %w", err)
	}

	sleep := c.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	results := make([]domain.TravelResult, len(odPairs))
	for i, p := range odPairs {
		if i > 0 && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("calculate travel matrix: wait before row %d: %w", i+1, err)
			}
		}

		r, err := c.Provider.Route(ctx, c.Profile, p.Origin.Coordinates, p.Destination.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("calculate travel matrix: row %d: %w", i+1, err)
		}

		if r == nil {
			obs.L().Info("no route found",
				zap.Int("row", i+1),
				zap.Stringer("origin", p.Origin.Coordinates),
				zap.Stringer("destination", p.Destination.Coordinates),
			)
			continue
		}

		minutes := domain.SecondsToMinutes(r.DurationSeconds)
		km := domain.MetersToKm(r.DistanceMeters)
		results[i] = domain.TravelResult{DurationMinutes: &minutes, DistanceKm: &km}
	}

	return &PairwiseResult{Pairs: pairs, Results: results}, nil
}

func parsePairs(pairs *tabular.Table, cols ColumnBindings) ([]domain.ODPair, error) {
	for _, name := range []string{cols.OriginLat, cols.OriginLon, cols.DestLat, cols.DestLon} {
		if _, err := pairs.ColumnIndex(name); err != nil {
			return nil, fmt.Errorf("bind columns: %w", err)
		}
	}

	out := make([]domain.ODPair, pairs.Len())
	for i := range pairs.Rows {
		var vals [4]float64
		for k, name := range []string{cols.OriginLat, cols.OriginLon, cols.DestLat, cols.DestLon} {
			v, err := pairs.Float(i, name)
			if err != nil {
				return nil, err
			}
			vals[k] = v
		}

		p := domain.ODPair{
			Origin:      domain.Place{Coordinates: domain.Coordinates{Lat: vals[0], Lon: vals[1]}},
			Destination: domain.Place{Coordinates: domain.Coordinates{Lat: vals[2], Lon: vals[3]}},
		}
		if err := p.Origin.Validate(); err != nil {
			return nil, fmt.Errorf("row %d origin: %w", i+1, err)
		}
		if err := p.Destination.Validate(); err != nil {
			return nil, fmt.Errorf("row %d destination: %w", i+1, err)
		}
		out[i] = p
	}

	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil || decimals < 0 {
		return v
	}
	r := domain.Round(*v, decimals)
	return &r
}
