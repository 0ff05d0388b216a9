package config

import (
	_ "embed"
	"fmt"
	"os"

	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/tabular"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/delhi.yml
var defaultScenario []byte

// PlaceSpec is a named point as written in a scenario file.
type PlaceSpec struct {
	Name string  `yaml:"name" validate:"required"`
	Lat  float64 `yaml:"lat" validate:"latitude"`
	Lon  float64 `yaml:"lon" validate:"longitude"`
}

func (p PlaceSpec) Place() domain.Place {
	return domain.Place{Name: p.Name, Coordinates: domain.Coordinates{Lat: p.Lat, Lon: p.Lon}}
}

type PairSpec struct {
	Origin      PlaceSpec `yaml:"origin"`
	Destination PlaceSpec `yaml:"destination"`
}

// Scenario is the input for both demos: an origins x destinations matrix and
// a list of explicit OD pairs.
type Scenario struct {
	Title        string      `yaml:"title"`
	Profile      string      `yaml:"profile" validate:"omitempty,osrm_profile"`
	Origins      []PlaceSpec `yaml:"origins" validate:"required,min=1,dive"`
	Destinations []PlaceSpec `yaml:"destinations" validate:"required,min=1,dive"`
	Pairs        []PairSpec  `yaml:"pairs" validate:"required,min=1,dive"`
}

// LoadScenario reads a scenario file; an empty path selects the built-in
// Delhi landmarks scenario.
func LoadScenario(path string) (*Scenario, error) {
	data := defaultScenario
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load scenario: read %q: %w", path, err)
		}
	}

	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := structValidator().Struct(s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	return &s, nil
}

func (s *Scenario) OriginPlaces() []domain.Place { return toPlaces(s.Origins) }

func (s *Scenario) DestinationPlaces() []domain.Place { return toPlaces(s.Destinations) }

// PairsTable lays the pairs out with the column names the pairwise
// calculator is bound to: origin, o_lat, o_lon, dest, d_lat, d_lon.
func (s *Scenario) PairsTable() (*tabular.Table, error) {
	rows := make([][]string, len(s.Pairs))
	for i, p := range s.Pairs {
		rows[i] = []string{
			p.Origin.Name, formatCoord(p.Origin.Lat), formatCoord(p.Origin.Lon),
			p.Destination.Name, formatCoord(p.Destination.Lat), formatCoord(p.Destination.Lon),
		}
	}
	return tabular.New([]string{"origin", "o_lat", "o_lon", "dest", "d_lat", "d_lon"}, rows)
}

func toPlaces(specs []PlaceSpec) []domain.Place {
	out := make([]domain.Place, len(specs))
	for i, p := range specs {
		out[i] = p.Place()
	}
	return out
}

func formatCoord(v float64) string {
	return tabular.FormatFloat(&v, -1)
}
