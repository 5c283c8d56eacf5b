package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geolocale/internal/locale"
)

func TestLocaleCache_RecordRoundTrip(t *testing.T) {
	record := &Geolocation{
		Country:     "Turkey",
		CountryCode: "TR",
		Region:      "Istanbul",
		City:        "Istanbul",
		Timezone:    "Europe/Istanbul",
		Locale:      locale.Turkish,
	}

	cache := NewLocaleCache("client", record)

	assert.Equal(t, "client", cache.Key)
	assert.Equal(t, "tr", cache.Locale)
	assert.Equal(t, record, cache.Record())
}
