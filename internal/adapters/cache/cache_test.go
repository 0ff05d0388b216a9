package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"osrm-travel-tools/internal/platform/db"
	"osrm-travel-tools/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseTravelCache runs the shared contract against any ports.TravelCache.
func exerciseTravelCache(t *testing.T, c ports.TravelCache) {
	t.Helper()
	ctx := context.Background()

	origin := "28.689020,77.209890"
	airport := "28.556160,77.100040"
	lodhi := "28.593300,77.219570"

	got, err := c.GetMany(ctx, "driving", origin, []string{airport, lodhi})
	require.NoError(t, err)
	assert.Empty(t, got)

	err = c.PutMany(ctx, "driving", origin, map[string]ports.DistanceResult{
		airport: {DistanceMeters: 21034.5, DurationSeconds: 1910.2},
		lodhi:   {DistanceMeters: 12870, DurationSeconds: 1203},
	})
	require.NoError(t, err)

	got, err = c.GetMany(ctx, "driving", origin, []string{airport, lodhi, lodhi, "", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 21034.5, DurationSeconds: 1910.2}, got[airport])
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 12870, DurationSeconds: 1203}, got[lodhi])

	// Profiles are isolated.
	got, err = c.GetMany(ctx, "walking", origin, []string{airport})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Upsert overwrites.
	err = c.PutMany(ctx, "driving", origin, map[string]ports.DistanceResult{
		airport: {DistanceMeters: 1, DurationSeconds: 2},
	})
	require.NoError(t, err)
	got, err = c.GetMany(ctx, "driving", origin, []string{airport})
	require.NoError(t, err)
	assert.Equal(t, ports.DistanceResult{DistanceMeters: 1, DurationSeconds: 2}, got[airport])

	_, err = c.GetMany(ctx, "driving", "", []string{airport})
	require.Error(t, err)

	err = c.PutMany(ctx, "driving", origin, map[string]ports.DistanceResult{" ": {}})
	require.Error(t, err)
}

func TestSqliteTravelCache(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn, DialectSQLite))
	// Second call must be a no-op.
	require.NoError(t, InitSchema(context.Background(), conn, DialectSQLite))

	exerciseTravelCache(t, NewSqliteTravelCache(conn))
}

func TestSQLTravelCachePostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, conn, DialectPostgres))
	_, err = conn.ExecContext(ctx, "DELETE FROM travel_cache")
	require.NoError(t, err)

	exerciseTravelCache(t, NewSQLTravelCache(conn))
}

func TestRedisTravelCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisTravelCache(client, time.Hour)
	exerciseTravelCache(t, c)

	ttl := mr.TTL("osrm:travel:driving:28.689020,77.209890")
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(2 * time.Hour)
	got, err := c.GetMany(context.Background(), "driving", "28.689020,77.209890", []string{"28.556160,77.100040"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisTravelCacheRejectsCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mr.HSet("osrm:travel:driving:o", "d", "not-a-pair")

	_, err := NewRedisTravelCache(client, 0).GetMany(context.Background(), "driving", "o", []string{"d"})
	require.Error(t, err)
}

func TestInitSchemaRejectsUnknownDialect(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Error(t, InitSchema(context.Background(), conn, Dialect("oracle")))
	require.Error(t, InitSchema(context.Background(), nil, DialectSQLite))
}

func TestUniqueKeys(t *testing.T) {
	got := uniqueKeys([]string{"b", "", "a", "b", " a", "a"})
	assert.Equal(t, []string{"b", "a", " a"}, got, "keys are kept verbatim so hits match the caller's lookups")
}
