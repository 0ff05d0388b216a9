package dto

type PairRequest struct {
	Origin      PlaceRequest `json:"origin"`
	Destination PlaceRequest `json:"destination"`
}

type PairsRequest struct {
	Profile string        `json:"profile"`
	Pairs   []PairRequest `json:"pairs"`
}

type PairResultResponse struct {
	Origin            string   `json:"origin"`
	Dest              string   `json:"dest"`
	TravelTimeMinutes *float64 `json:"travel_time_minutes"`
	DistanceKm        *float64 `json:"distance_km"`
}

type PairsResponse struct {
	Profile string               `json:"profile"`
	Results []PairResultResponse `json:"results"`
}
