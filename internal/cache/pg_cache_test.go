package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "scan:worker-1:gate-a"

func TestPGCache_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cache := NewPGCacheWithDB(mock)
	ctx := context.Background()

	value := []byte("event-id")
	ttl := 30 * time.Second

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs(testKey, value, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = cache.Set(ctx, testKey, value, ttl)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGCache_Get(t *testing.T) {
	t.Run("successful get", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCacheWithDB(mock)
		ctx := context.Background()

		value := []byte("event-id")
		expiresAt := time.Now().Add(30 * time.Second)

		rows := pgxmock.NewRows([]string{"value", "expires_at"}).
			AddRow(value, expiresAt)

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs(testKey).
			WillReturnRows(rows)

		result, err := cache.Get(ctx, testKey)
		assert.NoError(t, err)
		assert.Equal(t, value, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCacheWithDB(mock)
		ctx := context.Background()

		key := "missing:key"

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs(key).
			WillReturnError(pgx.ErrNoRows)

		result, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheMiss)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired entry is deleted on read", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCacheWithDB(mock)
		ctx := context.Background()

		key := "expired:key"
		expiresAt := time.Now().Add(-time.Minute)

		rows := pgxmock.NewRows([]string{"value", "expires_at"}).
			AddRow([]byte("stale"), expiresAt)

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs(key).
			WillReturnRows(rows)

		mock.ExpectExec("DELETE FROM cache_entries WHERE key").
			WithArgs(key).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		result, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheExpired)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGCache_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cache := NewPGCacheWithDB(mock)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM cache_entries WHERE key").
		WithArgs(testKey).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = cache.Delete(ctx, testKey)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGCache_Exists(t *testing.T) {
	t.Run("key exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCacheWithDB(mock)
		ctx := context.Background()

		rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(testKey).
			WillReturnRows(rows)

		exists, err := cache.Exists(ctx, testKey)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("key does not exist", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCacheWithDB(mock)
		ctx := context.Background()

		key := "missing:key"

		rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(key).
			WillReturnRows(rows)

		exists, err := cache.Exists(ctx, key)
		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGCache_CleanupExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cache := NewPGCacheWithDB(mock)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM cache_entries WHERE expires_at").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := cache.CleanupExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
