package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL      = "https://router.project-osrm.org"
	DefaultMaxTableSize = 100
)

// OSRMProvider implements TravelTimeProvider against an OSRM HTTP server.
//
// It coordinates:
//   - Coordinate validation
//   - Optional persistent caching of origin->destination results
//   - /route and /table API calls with retry/backoff
//   - Chunking of large tables to respect the server's max table size
//
// The provider is safe for concurrent use.
type OSRMProvider struct {
	session      *http.Client
	baseURL      string
	maxTableSize int
	backoff      time.Duration
	travelCache  ports.TravelCache
}

type Option func(*OSRMProvider)

func WithHTTPClient(c *http.Client) Option {
	return func(o *OSRMProvider) { o.session = c }
}

// WithMaxTableSize caps the number of coordinates sent in one /table request.
func WithMaxTableSize(n int) Option {
	return func(o *OSRMProvider) { o.maxTableSize = n }
}

// WithRetryBackoff sets the initial retry delay; it doubles on each attempt.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *OSRMProvider) { o.backoff = d }
}

func WithTravelCache(c ports.TravelCache) Option {
	return func(o *OSRMProvider) { o.travelCache = c }
}

func NewOSRMProvider(baseURL string, opts ...Option) (*OSRMProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("OSRM base url %q must start with http:// or https://", baseURL)
	}

	provider := &OSRMProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		baseURL:      baseURL,
		maxTableSize: DefaultMaxTableSize,
		backoff:      200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}

	if provider.maxTableSize < 2 {
		return nil, fmt.Errorf("OSRM max table size must be at least 2, got %d", provider.maxTableSize)
	}

	return provider, nil
}

// Route returns the fastest route between two points, consulting the cache first.
func (o *OSRMProvider) Route(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (_ *ports.DistanceResult, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if err := domain.ValidateProfile(profile); err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("osrm route: origin: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("osrm route: destination: %w", err)
	}

	if o.travelCache != nil {
		hits, err := o.travelCache.GetMany(ctx, profile, from.Key(), []string{to.Key()})
		if err != nil {
			return nil, fmt.Errorf("osrm route: get travel cache: %w", err)
		}
		if r, ok := hits[to.Key()]; ok {
			return &r, nil
		}
	}

	result, err := o.fetchRoute(ctx, profile, from, to)
	if err != nil {
		return nil, fmt.Errorf("osrm route %s -> %s: %w", from, to, err)
	}

	if result != nil && o.travelCache != nil {
		if err := o.travelCache.PutMany(ctx, profile, from.Key(), map[string]ports.DistanceResult{to.Key(): *result}); err != nil {
			obs.L().Warn("travel cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

// Table computes a many-to-many grid. Origins whose full row is cached are
// not sent to the server; the rest are fetched in chunks.
func (o *OSRMProvider) Table(
	ctx context.Context,
	profile string,
	origins []domain.Coordinates,
	destinations []domain.Coordinates,
) (_ [][]*ports.DistanceResult, err error) {
	defer obs.Time(ctx, "osrm.Table")(&err)

	if err := domain.ValidateProfile(profile); err != nil {
		return nil, fmt.Errorf("osrm table: %w", err)
	}
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, errors.New("osrm table: origins and destinations must be non-empty")
	}
	for i, c := range origins {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("osrm table: origin #%d: %w", i+1, err)
		}
	}
	for i, c := range destinations {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("osrm table: destination #%d: %w", i+1, err)
		}
	}

	// At least one origin must fit next to all destinations in a request.
	originsPerChunk := o.maxTableSize - len(destinations)
	if originsPerChunk < 1 {
		return nil, fmt.Errorf(
			"osrm table: %d destinations exceed max table size %d",
			len(destinations), o.maxTableSize,
		)
	}

	destKeys := make([]string, len(destinations))
	for j, d := range destinations {
		destKeys[j] = d.Key()
	}

	out := make([][]*ports.DistanceResult, len(origins))
	misses := make([]int, 0, len(origins))

	// Check persistent cache before issuing external API calls.
	for i, orig := range origins {
		if o.travelCache == nil {
			misses = append(misses, i)
			continue
		}

		hits, err := o.travelCache.GetMany(ctx, profile, orig.Key(), destKeys)
		if err != nil {
			return nil, fmt.Errorf("osrm table: get travel cache: %w", err)
		}

		row := make([]*ports.DistanceResult, len(destinations))
		complete := true
		for j, k := range destKeys {
			r, ok := hits[k]
			if !ok {
				complete = false
				break
			}
			row[j] = &r
		}

		if complete {
			out[i] = row
		} else {
			misses = append(misses, i)
		}
	}

	for start := 0; start < len(misses); start += originsPerChunk {
		end := min(start+originsPerChunk, len(misses))
		chunk := misses[start:end]

		chunkOrigins := make([]domain.Coordinates, len(chunk))
		for k, i := range chunk {
			chunkOrigins[k] = origins[i]
		}

		rows, err := o.fetchTable(ctx, profile, chunkOrigins, destinations)
		if err != nil {
			return nil, fmt.Errorf("osrm table: fetch origins %d..%d: %w", chunk[0]+1, chunk[len(chunk)-1]+1, err)
		}

		for k, i := range chunk {
			out[i] = rows[k]
			o.cacheRow(ctx, profile, origins[i], destKeys, rows[k])
		}
	}

	return out, nil
}

// cacheRow stores the reachable cells of a fetched row. Null cells are not
// cached, so they are retried on the next call.
func (o *OSRMProvider) cacheRow(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	destKeys []string,
	row []*ports.DistanceResult,
) {
	if o.travelCache == nil {
		return
	}

	results := make(map[string]ports.DistanceResult, len(row))
	for j, r := range row {
		if r != nil {
			results[destKeys[j]] = *r
		}
	}

	if len(results) == 0 {
		return
	}

	if err := o.travelCache.PutMany(ctx, profile, origin.Key(), results); err != nil {
		obs.L().Warn("travel cache write failed", zap.String("origin", origin.Key()), zap.Error(err))
	}
}
