package cache

import (
	"context"
	"errors"
	"fmt"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTravelCache stores one hash per (profile, origin); fields are
// destination keys and values are "meters,seconds".
type RedisTravelCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{Client: client, Prefix: "osrm:travel", TTL: ttl}
}

func (s *RedisTravelCache) key(profile, origin string) string {
	return s.Prefix + ":" + profile + ":" + origin
}

// Fetch cached results for one origin and multiple destinations.
func (s *RedisTravelCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "travel.cache.redis.GetMany")(&err)

	if s.Client == nil {
		return nil, errors.New("travel cache: redis client is nil")
	}

	if origin == "" {
		return nil, errors.New("get travel cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	vals, err := s.Client.HMGet(ctx, s.key(profile, origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel cache: hmget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decodeRedisValue(raw)
		if err != nil {
			return nil, fmt.Errorf("get travel cache: dest=%q: %w", uniq[i], err)
		}
		out[uniq[i]] = r
	}

	return out, nil
}

// Store many cached results for a single origin. The TTL, when set, is
// refreshed on every write.
func (s *RedisTravelCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if s.Client == nil {
		return errors.New("travel cache: redis client is nil")
	}

	if origin == "" {
		return errors.New("insert travel cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(results))
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert travel cache: empty destination key")
		}
		fields = append(fields, dest, encodeRedisValue(r))
	}

	key := s.key(profile, origin)
	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, key, fields...)
	if s.TTL > 0 {
		pipe.Expire(ctx, key, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel cache: exec pipeline: %w", err)
	}

	return nil
}

func encodeRedisValue(r ports.DistanceResult) string {
	return strconv.FormatFloat(r.DistanceMeters, 'f', -1, 64) + "," +
		strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64)
}

func decodeRedisValue(raw string) (ports.DistanceResult, error) {
	meters, seconds, ok := strings.Cut(raw, ",")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("malformed value %q", raw)
	}

	m, err := strconv.ParseFloat(meters, 64)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("parse meters %q: %w", meters, err)
	}
	sec, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("parse seconds %q: %w", seconds, err)
	}

	return ports.DistanceResult{DistanceMeters: m, DurationSeconds: sec}, nil
}
