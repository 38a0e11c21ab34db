//go:build integration

package lookup_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rcgateway/internal/lookup/models"
	"rcgateway/internal/lookup/store"
	platformredis "rcgateway/internal/platform/redis"
	"rcgateway/pkg/platform/sentinel"
	"rcgateway/pkg/testutil/containers"
)

func sampleEntry(mode models.ProvenanceMode, ref string, at time.Time) *models.CacheEntry {
	return &models.CacheEntry{
		RegistrationNumber: "MH12AB1234",
		Record: models.Record{
			RegistrationNumber: "MH12AB1234",
			OwnerName:          "RAJESH KUMAR",
			Maker:              "MARUTI SUZUKI",
			FuelType:           "PETROL",
		},
		Mode:        mode,
		ProviderRef: ref,
		CreatedAt:   at,
	}
}

func TestResultCachePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	s := store.NewPostgresStore(pg.DB)

	t.Run("find returns newest row", func(t *testing.T) {
		require.NoError(t, pg.TruncateTables(ctx, "rc_cache_entries"))

		_, err := s.Find(ctx, "MH12AB1234")
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		now := time.Now().UTC()
		require.NoError(t, s.Save(ctx, sampleEntry(models.ModeExternal, "2", now.Add(-time.Hour))))
		require.NoError(t, s.Save(ctx, sampleEntry(models.ModeCache, "", now)))

		entry, err := s.Find(ctx, "MH12AB1234")
		require.NoError(t, err)
		require.Equal(t, models.ModeCache, entry.Mode)
		require.Equal(t, "RAJESH KUMAR", entry.Record.OwnerName)
	})

	t.Run("latest external ref skips replay rows", func(t *testing.T) {
		require.NoError(t, pg.TruncateTables(ctx, "rc_cache_entries"))

		now := time.Now().UTC()
		require.NoError(t, s.Save(ctx, sampleEntry(models.ModeExternal, "3", now.Add(-2*time.Hour))))
		require.NoError(t, s.Save(ctx, sampleEntry(models.ModeCache, "", now.Add(-time.Hour))))
		require.NoError(t, s.Save(ctx, sampleEntry(models.ModeCache, "", now)))

		ref, err := s.LatestExternalRef(ctx, "MH12AB1234")
		require.NoError(t, err)
		require.Equal(t, "3", ref)
	})

	t.Run("record round-trips optional fields", func(t *testing.T) {
		require.NoError(t, pg.TruncateTables(ctx, "rc_cache_entries"))

		entry := sampleEntry(models.ModeExternal, "1", time.Now().UTC())
		entry.Record.Color = "PEARL WHITE"
		entry.Record.SeatingCapacity = "5"
		require.NoError(t, s.Save(ctx, entry))

		got, err := s.Find(ctx, "MH12AB1234")
		require.NoError(t, err)
		require.Equal(t, "PEARL WHITE", got.Record.Color)
		require.Equal(t, "5", got.Record.SeatingCapacity)
	})
}

func TestResultCacheRedisLayer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	inner := store.NewMemoryStore()
	layered := store.NewRedisStore(inner, &platformredis.Client{Client: rc.Client}, time.Minute, slog.Default())

	entry := sampleEntry(models.ModeExternal, "1", time.Now().UTC())
	require.NoError(t, layered.Save(ctx, entry))

	// Hot read served even if the durable row disappears underneath.
	got, err := layered.Find(ctx, "MH12AB1234")
	require.NoError(t, err)
	require.Equal(t, "RAJESH KUMAR", got.Record.OwnerName)

	fresh := store.NewRedisStore(store.NewMemoryStore(), &platformredis.Client{Client: rc.Client}, time.Minute, slog.Default())
	got, err = fresh.Find(ctx, "MH12AB1234")
	require.NoError(t, err)
	require.Equal(t, models.ModeExternal, got.Mode)
}
