package domain

import "fmt"

// Place is a labelled point such as a landmark.
type Place struct {
	Name string
	Coordinates
}

func (p Place) Validate() error {
	if err := p.Coordinates.Validate(); err != nil {
		return fmt.Errorf("place %q: %w", p.Name, err)
	}
	return nil
}

// ODPair is a single origin-destination pair for which a travel time is computed.
type ODPair struct {
	Origin      Place
	Destination Place
}
