package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rcgateway/internal/lookup/models"
	"rcgateway/pkg/platform/sentinel"
)

func TestMemoryStoreAppendOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Find(ctx, "MH12AB1234")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	first := &models.CacheEntry{
		RegistrationNumber: "MH12AB1234",
		Record:             models.Record{OwnerName: "RAJESH KUMAR"},
		Mode:               models.ModeExternal,
		ProviderRef:        "1",
		CreatedAt:          time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.Save(ctx, first))

	second := &models.CacheEntry{
		RegistrationNumber: "MH12AB1234",
		Record:             models.Record{OwnerName: "RAJESH KUMAR"},
		Mode:               models.ModeCache,
		CreatedAt:          time.Now(),
	}
	require.NoError(t, s.Save(ctx, second))

	// Newest row wins; the older one is superseded, not replaced.
	got, err := s.Find(ctx, "MH12AB1234")
	require.NoError(t, err)
	require.Equal(t, models.ModeCache, got.Mode)
	require.Equal(t, 2, s.Len())
}

func TestMemoryStoreLatestExternalRef(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.LatestExternalRef(ctx, "MH12AB1234")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.Save(ctx, &models.CacheEntry{
		RegistrationNumber: "MH12AB1234",
		Mode:               models.ModeExternal,
		ProviderRef:        "2",
	}))
	require.NoError(t, s.Save(ctx, &models.CacheEntry{
		RegistrationNumber: "MH12AB1234",
		Mode:               models.ModeCache,
	}))

	ref, err := s.LatestExternalRef(ctx, "MH12AB1234")
	require.NoError(t, err)
	require.Equal(t, "2", ref)
}
