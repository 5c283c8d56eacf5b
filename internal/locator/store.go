package locator

import (
	"context"
	"errors"

	"geolocale/db"
	"geolocale/models"
)

// DefaultStoreKey identifies this installation's record in the cache table.
const DefaultStoreKey = "geolocation_cache"

// RepositoryStore is a Store backed by the SQLite locale cache repository.
type RepositoryStore struct {
	repo *db.LocaleCacheRepository
	key  string
}

// NewRepositoryStore wraps a repository under a fixed cache key.
func NewRepositoryStore(repo *db.LocaleCacheRepository, key string) *RepositoryStore {
	if key == "" {
		key = DefaultStoreKey
	}
	return &RepositoryStore{repo: repo, key: key}
}

// Load returns the persisted record, or nil when absent or expired.
func (s *RepositoryStore) Load(ctx context.Context) (*models.Geolocation, error) {
	cached, err := s.repo.FindByKey(ctx, s.key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cached.Record(), nil
}

// Save persists the record, replacing whatever was stored before.
func (s *RepositoryStore) Save(ctx context.Context, record *models.Geolocation) error {
	return s.repo.Upsert(ctx, models.NewLocaleCache(s.key, record))
}
