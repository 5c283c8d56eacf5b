package models

import (
	"time"

	"geolocale/internal/locale"
)

// Geolocation is a resolved location-to-locale mapping for a single client.
// Records are immutable once created; a fresher lookup produces a new record
// rather than mutating an old one.
type Geolocation struct {
	Country     string        `json:"country"`
	CountryCode string        `json:"countryCode"`
	Region      string        `json:"region"`
	City        string        `json:"city"`
	Timezone    string        `json:"timezone"`
	Locale      locale.Locale `json:"locale"`
}

// LocaleCache stores a persisted geolocation record for a cache key
type LocaleCache struct {
	ID          string    `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Country     string    `db:"country" json:"country"`
	CountryCode string    `db:"country_code" json:"country_code"`
	Region      string    `db:"region" json:"region"`
	City        string    `db:"city" json:"city"`
	Timezone    string    `db:"timezone" json:"timezone"`
	Locale      string    `db:"locale" json:"locale"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"` // Cache expiration
}

// Record converts a cache row back into the geolocation record it stores.
func (c *LocaleCache) Record() *Geolocation {
	return &Geolocation{
		Country:     c.Country,
		CountryCode: c.CountryCode,
		Region:      c.Region,
		City:        c.City,
		Timezone:    c.Timezone,
		Locale:      locale.Locale(c.Locale),
	}
}

// NewLocaleCache wraps a geolocation record for persistence under a key.
func NewLocaleCache(key string, record *Geolocation) *LocaleCache {
	return &LocaleCache{
		Key:         key,
		Country:     record.Country,
		CountryCode: record.CountryCode,
		Region:      record.Region,
		City:        record.City,
		Timezone:    record.Timezone,
		Locale:      string(record.Locale),
	}
}
