package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolocale/internal/locale"
	"geolocale/models"
)

func setupRepo(t *testing.T, ttl time.Duration) *LocaleCacheRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitializeSchema(conn))
	return NewLocaleCacheRepository(conn, ttl)
}

func sampleRecord() *models.Geolocation {
	return &models.Geolocation{
		Country:     "Serbia",
		CountryCode: "RS",
		Region:      "Belgrade",
		City:        "Belgrade",
		Timezone:    "Europe/Belgrade",
		Locale:      locale.Serbian,
	}
}

func TestLocaleCacheRepository_RoundTrip(t *testing.T) {
	repo := setupRepo(t, 24*time.Hour)
	ctx := context.Background()

	cache := models.NewLocaleCache("client", sampleRecord())
	require.NoError(t, repo.Create(ctx, cache))
	assert.NotEmpty(t, cache.ID)

	found, err := repo.FindByKey(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), found.Record())
	assert.True(t, found.ExpiresAt.After(time.Now()))
}

func TestLocaleCacheRepository_MissingKeyIsNotFound(t *testing.T) {
	repo := setupRepo(t, 24*time.Hour)

	_, err := repo.FindByKey(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocaleCacheRepository_ExpiredRowIsNotFound(t *testing.T) {
	// A zero TTL expires the row immediately.
	repo := setupRepo(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.NewLocaleCache("client", sampleRecord())))

	_, err := repo.FindByKey(ctx, "client")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocaleCacheRepository_UpsertReplacesRecord(t *testing.T) {
	repo := setupRepo(t, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.NewLocaleCache("client", sampleRecord())))

	updated := sampleRecord()
	updated.Country = "Turkey"
	updated.CountryCode = "TR"
	updated.Locale = locale.Turkish
	require.NoError(t, repo.Upsert(ctx, models.NewLocaleCache("client", updated)))

	found, err := repo.FindByKey(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, "TR", found.CountryCode)
	assert.Equal(t, string(locale.Turkish), found.Locale)
}

func TestLocaleCacheRepository_UpsertRevivesExpiredRow(t *testing.T) {
	repo := setupRepo(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.NewLocaleCache("client", sampleRecord())))

	// The expired row still owns the key; upsert must update, not insert.
	repo.ttl = 24 * time.Hour
	require.NoError(t, repo.Upsert(ctx, models.NewLocaleCache("client", sampleRecord())))

	found, err := repo.FindByKey(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, "RS", found.CountryCode)
}

func TestLocaleCacheRepository_CleanupExpired(t *testing.T) {
	repo := setupRepo(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.NewLocaleCache("stale", sampleRecord())))
	require.NoError(t, repo.CleanupExpired(ctx))

	var count int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM locale_cache`).Scan(&count))
	assert.Equal(t, 0, count)
}
