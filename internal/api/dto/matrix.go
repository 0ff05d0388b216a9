package dto

type MatrixRequest struct {
	Profile      string         `json:"profile"`
	Origins      []PlaceRequest `json:"origins"`
	Destinations []PlaceRequest `json:"destinations"`
}

// Null cells mean no route.
type MatrixResponse struct {
	Profile          string       `json:"profile"`
	Origins          []string     `json:"origins"`
	Destinations     []string     `json:"destinations"`
	DurationsMinutes [][]*float64 `json:"durations_minutes"`
	DistancesKm      [][]*float64 `json:"distances_km"`
}
