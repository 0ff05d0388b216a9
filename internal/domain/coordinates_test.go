package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinates
		wantErr bool
	}{
		{name: "isi delhi", c: Coordinates{Lat: 28.68902, Lon: 77.20989}},
		{name: "poles and antimeridian", c: Coordinates{Lat: -90, Lon: 180}},
		{name: "lat too large", c: Coordinates{Lat: 90.0001, Lon: 0}, wantErr: true},
		{name: "lon too small", c: Coordinates{Lat: 0, Lon: -180.5}, wantErr: true},
		{name: "nan", c: Coordinates{Lat: math.NaN(), Lon: 0}, wantErr: true},
		{name: "inf", c: Coordinates{Lat: 0, Lon: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCoordinates))
		})
	}
}

func TestCoordinatesFormatting(t *testing.T) {
	c := Coordinates{Lat: 28.5933, Lon: 77.21957}

	assert.Equal(t, "77.21957,28.5933", c.OSRMString())
	assert.Equal(t, "28.593300,77.219570", c.Key())
	assert.Equal(t, []float64{77.21957, 28.5933}, c.CoordsToList())
}

func TestHaversineKm(t *testing.T) {
	isi := Coordinates{Lat: 28.68902, Lon: 77.20989}
	lodhi := Coordinates{Lat: 28.59330, Lon: 77.21957}

	d := HaversineKm(isi, lodhi)
	assert.InDelta(t, 10.69, d, 0.1)
	assert.Zero(t, HaversineKm(isi, isi))
}

func TestTravelMatrixRounded(t *testing.T) {
	v := 12.3456
	m := &TravelMatrix{
		Origins:      []string{"A"},
		Destinations: []string{"X", "Y"},
		Durations:    [][]*float64{{&v, nil}},
		Distances:    [][]*float64{{&v, nil}},
	}

	r := m.Rounded(1, 2)

	require.Equal(t, 1, r.Rows())
	require.Equal(t, 2, r.Cols())
	assert.Equal(t, 12.3, *r.Durations[0][0])
	assert.Equal(t, 12.35, *r.Distances[0][0])
	assert.Nil(t, r.Durations[0][1])
	assert.Equal(t, 12.3456, *m.Durations[0][0], "receiver must not be modified")
}
