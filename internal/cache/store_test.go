package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/models"
)

func openCacheTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory":   NewMemoryStore(),
		"database": NewDatabaseStore(openCacheTestDB(t)),
	}
}

func TestStoreSetGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Minute))

			value, ok, err := store.Get(ctx, "k1")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("v1"), value)
		})
	}
}

func TestStoreGetMissingKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(context.Background(), "absent")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStoreExpiredEntriesAreMisses(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Millisecond))
			time.Sleep(10 * time.Millisecond)

			_, ok, err := store.Get(ctx, "short")
			require.NoError(t, err)
			require.False(t, ok, "expected expired entry to be treated as missing")
		})
	}
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "pinned", []byte("x"), 0))

			_, ok, err := store.Get(ctx, "pinned")
			require.NoError(t, err)
			require.True(t, ok, "expected zero TTL to mean no expiry")
		})
	}
}

func TestStoreSetOverwrites(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))
			require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))

			value, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("new"), value)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "gone", []byte("x"), time.Minute))
			require.NoError(t, store.Delete(ctx, "gone"))

			_, ok, err := store.Get(ctx, "gone")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStoreIncrementWithTTL(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			count, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 1, count)

			count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 2, count)
			require.Greater(t, ttl, time.Duration(0))
		})
	}
}
