package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"geolocale/internal/util"
	"geolocale/models"

	"github.com/google/uuid"
)

// LocaleCacheRepository persists resolved geolocation records so a locale
// survives process restarts, with the same 24h expiry as the in-memory cache.
type LocaleCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
}

func NewLocaleCacheRepository(db *sql.DB, ttl time.Duration) *LocaleCacheRepository {
	return &LocaleCacheRepository{db: db, ttl: ttl}
}

// FindByKey retrieves a cached record, honoring its expiry.
func (r *LocaleCacheRepository) FindByKey(ctx context.Context, key string) (*models.LocaleCache, error) {
	query := `
		SELECT id, key, country, country_code, region, city, timezone, locale,
		       created_at, updated_at, expires_at
		FROM locale_cache
		WHERE key = ? AND expires_at > ?
	`

	var cache models.LocaleCache
	err := r.db.QueryRowContext(ctx, query, key, time.Now()).Scan(
		&cache.ID, &cache.Key, &cache.Country, &cache.CountryCode, &cache.Region,
		&cache.City, &cache.Timezone, &cache.Locale,
		&cache.CreatedAt, &cache.UpdatedAt, &cache.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find locale cache by key: %w", err)
	}

	return &cache, nil
}

// Create stores a new cache row.
func (r *LocaleCacheRepository) Create(ctx context.Context, cache *models.LocaleCache) error {
	if cache.ID == "" {
		cache.ID = uuid.New().String()
	}

	now := time.Now()
	cache.CreatedAt = now
	cache.UpdatedAt = now
	cache.ExpiresAt = now.Add(r.ttl)

	query := `
		INSERT INTO locale_cache (
			id, key, country, country_code, region, city, timezone, locale,
			created_at, updated_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return util.RetryOnLock(func() error {
		_, err := r.db.ExecContext(ctx, query,
			cache.ID, cache.Key, cache.Country, cache.CountryCode, cache.Region,
			cache.City, cache.Timezone, cache.Locale,
			cache.CreatedAt, cache.UpdatedAt, cache.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create locale cache: %w", err)
		}
		return nil
	})
}

// Update refreshes an existing cache row and its expiry.
func (r *LocaleCacheRepository) Update(ctx context.Context, cache *models.LocaleCache) error {
	now := time.Now()
	cache.UpdatedAt = now
	cache.ExpiresAt = now.Add(r.ttl)

	query := `
		UPDATE locale_cache SET
			country = ?, country_code = ?, region = ?, city = ?, timezone = ?,
			locale = ?, updated_at = ?, expires_at = ?
		WHERE key = ?
	`

	return util.RetryOnLock(func() error {
		result, err := r.db.ExecContext(ctx, query,
			cache.Country, cache.CountryCode, cache.Region, cache.City,
			cache.Timezone, cache.Locale, cache.UpdatedAt, cache.ExpiresAt,
			cache.Key,
		)
		if err != nil {
			return fmt.Errorf("failed to update locale cache: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Upsert creates or updates the cache row for a key.
func (r *LocaleCacheRepository) Upsert(ctx context.Context, cache *models.LocaleCache) error {
	// An expired row still occupies the key, so look it up without the
	// expiry filter before deciding between insert and update.
	var existingID string
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM locale_cache WHERE key = ?`, cache.Key,
	).Scan(&existingID, &createdAt)

	if err == sql.ErrNoRows {
		return r.Create(ctx, cache)
	}
	if err != nil {
		return fmt.Errorf("failed to look up locale cache for upsert: %w", err)
	}

	cache.ID = existingID
	cache.CreatedAt = createdAt
	return r.Update(ctx, cache)
}

// CleanupExpired removes expired cache entries
func (r *LocaleCacheRepository) CleanupExpired(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locale_cache WHERE expires_at < ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to cleanup expired locale cache: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected > 0 {
		fmt.Printf("Cleaned up %d expired locale cache entries\n", rowsAffected)
	}

	return nil
}

// Close closes the repository (satisfies Repository interface)
func (r *LocaleCacheRepository) Close() error {
	// SQLite connection is managed by the main DB instance
	return nil
}
