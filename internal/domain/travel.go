package domain

import "math"

// TravelResult holds the computed travel time and distance for one OD pair.
// Both fields are nil when the routing server could not find a route.
type TravelResult struct {
	DurationMinutes *float64
	DistanceKm      *float64
}

func (r TravelResult) Found() bool {
	return r.DurationMinutes != nil && r.DistanceKm != nil
}

// TravelMatrix is the many-to-many output: durations in minutes and distances
// in kilometers, row-indexed by origin and column-indexed by destination.
// A nil cell means no route between that origin and destination.
type TravelMatrix struct {
	Origins      []string
	Destinations []string
	Durations    [][]*float64
	Distances    [][]*float64
}

func (m *TravelMatrix) Rows() int { return len(m.Origins) }

func (m *TravelMatrix) Cols() int { return len(m.Destinations) }

// Rounded returns a copy with durations and distances rounded to the given
// number of decimals. The receiver is not modified.
func (m *TravelMatrix) Rounded(durationDecimals, distanceDecimals int) *TravelMatrix {
	return &TravelMatrix{
		Origins:      append([]string(nil), m.Origins...),
		Destinations: append([]string(nil), m.Destinations...),
		Durations:    roundGrid(m.Durations, durationDecimals),
		Distances:    roundGrid(m.Distances, distanceDecimals),
	}
}

func roundGrid(grid [][]*float64, decimals int) [][]*float64 {
	out := make([][]*float64, len(grid))
	for i, row := range grid {
		out[i] = make([]*float64, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			r := Round(*v, decimals)
			out[i][j] = &r
		}
	}
	return out
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func SecondsToMinutes(s float64) float64 { return s / 60 }

func MetersToKm(m float64) float64 { return m / 1000 }
