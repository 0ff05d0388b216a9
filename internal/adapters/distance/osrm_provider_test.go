package distance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	isiDelhi     = domain.Coordinates{Lat: 28.68902, Lon: 77.20989}
	abcoffee     = domain.Coordinates{Lat: 28.53074, Lon: 77.21043}
	delhiAirport = domain.Coordinates{Lat: 28.55616, Lon: 77.10004}
	lodhiGardens = domain.Coordinates{Lat: 28.59330, Lon: 77.21957}
)

func newTestProvider(t *testing.T, h http.HandlerFunc, opts ...Option) *OSRMProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRetryBackoff(time.Millisecond)}, opts...)
	p, err := NewOSRMProvider(srv.URL, opts...)
	require.NoError(t, err)
	return p
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func f(v float64) *float64 { return &v }

func TestOSRMProviderTable(t *testing.T) {
	var gotPath, gotQuery string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeJSON(t, w, http.StatusOK, map[string]any{
			"code": "Ok",
			"durations": [][]*float64{
				{f(1910.2), f(1203)},
				{f(1500), nil},
			},
			"distances": [][]*float64{
				{f(21034.5), f(12870)},
				{f(14000), nil},
			},
		})
	})

	rows, err := p.Table(context.Background(), "driving",
		[]domain.Coordinates{isiDelhi, abcoffee},
		[]domain.Coordinates{delhiAirport, lodhiGardens},
	)
	require.NoError(t, err)

	assert.Equal(t, "/table/v1/driving/77.20989,28.68902;77.21043,28.53074;77.10004,28.55616;77.21957,28.5933", gotPath)
	assert.Contains(t, gotQuery, "annotations=duration%2Cdistance")
	assert.Contains(t, gotQuery, "sources=0%3B1")
	assert.Contains(t, gotQuery, "destinations=2%3B3")

	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 21034.5, DurationSeconds: 1910.2}, *rows[0][0])
	assert.Nil(t, rows[1][1], "null cells must stay nil")
}

func TestOSRMProviderTableRejectsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "wrong row count",
			body: map[string]any{"code": "Ok", "durations": [][]float64{{1, 2}}, "distances": [][]float64{{1, 2}}},
		},
		{
			name: "wrong column count",
			body: map[string]any{"code": "Ok", "durations": [][]float64{{1}, {1}}, "distances": [][]float64{{1}, {1}}},
		},
		{
			name: "error code",
			body: map[string]any{"code": "InvalidOptions", "message": "bad"},
		},
		{
			name: "negative duration",
			body: map[string]any{"code": "Ok", "durations": [][]float64{{-1, 2}, {1, 2}}, "distances": [][]float64{{1, 2}, {1, 2}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, tt.body)
			})

			_, err := p.Table(context.Background(), "driving",
				[]domain.Coordinates{isiDelhi, abcoffee},
				[]domain.Coordinates{delhiAirport, lodhiGardens},
			)
			require.Error(t, err)
		})
	}
}

func TestOSRMProviderTableChunksOrigins(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		n := len(strings.Split(r.URL.Query().Get("sources"), ";"))
		durations := make([][]float64, n)
		distances := make([][]float64, n)
		for i := range durations {
			durations[i] = []float64{60}
			distances[i] = []float64{1000}
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"code": "Ok", "durations": durations, "distances": distances})
	}, WithMaxTableSize(3))

	origins := []domain.Coordinates{isiDelhi, abcoffee, lodhiGardens, isiDelhi, abcoffee}
	rows, err := p.Table(context.Background(), "driving", origins, []domain.Coordinates{delhiAirport})
	require.NoError(t, err)

	// Two origins per request next to one destination.
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, rows, 5)
	for _, row := range rows {
		require.NotNil(t, row[0])
		assert.Equal(t, 60.0, row[0].DurationSeconds)
	}
}

func TestOSRMProviderTableTooManyDestinations(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, WithMaxTableSize(2))

	_, err := p.Table(context.Background(), "driving",
		[]domain.Coordinates{isiDelhi},
		[]domain.Coordinates{delhiAirport, lodhiGardens},
	)
	require.Error(t, err)
}

func TestOSRMProviderRoute(t *testing.T) {
	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "false", r.URL.Query().Get("overview"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"code":   "Ok",
			"routes": []map[string]float64{{"duration": 1203.4, "distance": 12870.1}},
		})
	})

	r, err := p.Route(context.Background(), "driving", isiDelhi, lodhiGardens)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "/route/v1/driving/77.20989,28.68902;77.21957,28.5933", gotPath)
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 12870.1, DurationSeconds: 1203.4}, *r)
}

func TestOSRMProviderRouteNoRoute(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"code": "NoRoute", "message": "Impossible route between points"})
	})

	r, err := p.Route(context.Background(), "driving", isiDelhi, lodhiGardens)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestOSRMProviderRouteInvalidQueryIsError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"code": "InvalidQuery", "message": "Query string malformed"})
	})

	_, err := p.Route(context.Background(), "driving", isiDelhi, lodhiGardens)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidQuery")
}

func TestOSRMProviderRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"code":   "Ok",
			"routes": []map[string]float64{{"duration": 60, "distance": 1000}},
		})
	})

	r, err := p.Route(context.Background(), "driving", isiDelhi, lodhiGardens)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOSRMProviderGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.Route(context.Background(), "driving", isiDelhi, lodhiGardens)
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestOSRMProviderRejectsInvalidInput(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx := context.Background()

	_, err := p.Route(ctx, "driving", domain.Coordinates{Lat: 91}, lodhiGardens)
	require.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	_, err = p.Route(ctx, "driving/../x", isiDelhi, lodhiGardens)
	require.Error(t, err)

	_, err = p.Table(ctx, "driving", nil, []domain.Coordinates{lodhiGardens})
	require.Error(t, err)
}

type memCache struct {
	m    map[string]ports.DistanceResult
	puts int
}

func (c *memCache) GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	out := map[string]ports.DistanceResult{}
	for _, d := range destinations {
		if r, ok := c.m[profile+"|"+origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memCache) PutMany(ctx context.Context, profile, origin string, results map[string]ports.DistanceResult) error {
	c.puts++
	for d, r := range results {
		c.m[profile+"|"+origin+"|"+d] = r
	}
	return nil
}

func TestOSRMProviderUsesTravelCache(t *testing.T) {
	var calls atomic.Int32
	c := &memCache{m: map[string]ports.DistanceResult{}}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.HasPrefix(r.URL.Path, "/route/") {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"code":   "Ok",
				"routes": []map[string]float64{{"duration": 60, "distance": 1000}},
			})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"code":      "Ok",
			"durations": [][]float64{{60, 120}},
			"distances": [][]float64{{1000, 2000}},
		})
	}, WithTravelCache(c))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Route(ctx, "driving", isiDelhi, lodhiGardens)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())

	dests := []domain.Coordinates{delhiAirport, lodhiGardens}
	for i := 0; i < 2; i++ {
		rows, err := p.Table(ctx, "driving", []domain.Coordinates{abcoffee}, dests)
		require.NoError(t, err)
		assert.Equal(t, 120.0, rows[0][1].DurationSeconds)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewOSRMProviderValidatesConfig(t *testing.T) {
	_, err := NewOSRMProvider("ftp://example.com")
	require.Error(t, err)

	_, err = NewOSRMProvider("http://example.com", WithMaxTableSize(1))
	require.Error(t, err)

	p, err := NewOSRMProvider("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, p.baseURL)
}

func TestOSRMProviderTableNoRouteGivesNullCells(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]string
	}{
		{name: "unsnappable point", status: http.StatusBadRequest, body: map[string]string{"code": "NoSegment", "message": "Could not find a matching segment"}},
		{name: "no table", status: http.StatusOK, body: map[string]string{"code": "NoTable"}},
		{name: "no route", status: http.StatusBadRequest, body: map[string]string{"code": "NoRoute"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			rows, err := p.Table(context.Background(), "driving",
				[]domain.Coordinates{isiDelhi, abcoffee},
				[]domain.Coordinates{delhiAirport, lodhiGardens},
			)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			for _, row := range rows {
				require.Len(t, row, 2)
				assert.Nil(t, row[0])
				assert.Nil(t, row[1])
			}
		})
	}
}

func TestOSRMProviderTableNoRouteOnlyNullsItsChunk(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// The first origin cannot be snapped to the road network.
		if strings.HasPrefix(r.URL.Path, "/table/v1/driving/77.20989,28.68902;") {
			writeJSON(t, w, http.StatusBadRequest, map[string]string{"code": "NoSegment"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"code": "Ok", "durations": [][]float64{{60}}, "distances": [][]float64{{1000}}})
	}, WithMaxTableSize(2))

	rows, err := p.Table(context.Background(), "driving",
		[]domain.Coordinates{isiDelhi, abcoffee},
		[]domain.Coordinates{delhiAirport},
	)
	require.NoError(t, err)
	assert.Nil(t, rows[0][0])
	require.NotNil(t, rows[1][0])
	assert.Equal(t, 60.0, rows[1][0].DurationSeconds)
}

type failingPutCache struct{ puts int }

func (c *failingPutCache) GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	return map[string]ports.DistanceResult{}, nil
}

func (c *failingPutCache) PutMany(ctx context.Context, profile, origin string, results map[string]ports.DistanceResult) error {
	c.puts++
	return errors.New("disk full")
}

func TestOSRMProviderCacheWriteFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	obs.SetLogger(zap.New(core))
	t.Cleanup(func() { obs.SetLogger(nil) })

	c := &failingPutCache{}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/route/") {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"code":   "Ok",
				"routes": []map[string]float64{{"duration": 60, "distance": 1000}},
			})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"code": "Ok", "durations": [][]float64{{120}}, "distances": [][]float64{{2000}}})
	}, WithTravelCache(c))
	ctx := context.Background()

	r, err := p.Route(ctx, "driving", isiDelhi, lodhiGardens)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 60.0, r.DurationSeconds)

	rows, err := p.Table(ctx, "driving", []domain.Coordinates{abcoffee}, []domain.Coordinates{delhiAirport})
	require.NoError(t, err)
	require.NotNil(t, rows[0][0])
	assert.Equal(t, 120.0, rows[0][0].DurationSeconds)

	assert.Equal(t, 2, c.puts)
	warnings := logs.FilterMessage("travel cache write failed").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "disk full", warnings[0].ContextMap()["error"])
}
