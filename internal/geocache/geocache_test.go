package geocache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolocale/internal/locale"
	"geolocale/models"
)

func testRecord(cc string) *models.Geolocation {
	return &models.Geolocation{
		Country:     "Test Country",
		CountryCode: cc,
		Region:      "Test Region",
		City:        "Test City",
		Timezone:    "UTC",
		Locale:      locale.FromCountryCode(cc),
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	rec := testRecord("TR")

	c.Put("203.0.113.5", rec)

	got, ok := c.Get("203.0.113.5")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestMemoryCache_MissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache()
	_, ok := c.Get("198.51.100.7")
	assert.False(t, ok)
}

func TestMemoryCache_ExpiryIsAMiss(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemoryCacheWithOptions(24*time.Hour, DefaultMaxEntries, clock)

	c.Put("203.0.113.5", testRecord("RS"))

	// One minute before the TTL the entry is still served.
	now = now.Add(24*time.Hour - time.Minute)
	got, ok := c.Get("203.0.113.5")
	require.True(t, ok)
	assert.Equal(t, locale.Serbian, got.Locale)

	// At the TTL boundary the entry must never be returned stale.
	now = now.Add(time.Minute)
	_, ok = c.Get("203.0.113.5")
	assert.False(t, ok)
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache()
	c.Put("a", testRecord("TR"))
	c.Put("b", testRecord("DE"))

	c.Clear()

	assert.Equal(t, 0, c.Stats().Size)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache()
	c.Put("b", testRecord("TR"))
	c.Put("a", testRecord("DE"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, []string{"a", "b"}, stats.Keys)
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemoryCacheWithOptions(24*time.Hour, 3, clock)

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("ip-%d", i), testRecord("TR"))
		now = now.Add(time.Second)
	}

	assert.Equal(t, 3, c.Stats().Size)
	_, ok := c.Get("ip-0")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get("ip-3")
	assert.True(t, ok)
}

func TestMemoryCache_JanitorRemovesExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemoryCacheWithOptions(time.Minute, DefaultMaxEntries, clock)

	c.Put("stale", testRecord("TR"))
	now = now.Add(2 * time.Minute)
	c.removeExpired()

	assert.Equal(t, 0, c.Stats().Size)
}
