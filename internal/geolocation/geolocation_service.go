package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"geolocale/internal/config"
	"geolocale/internal/geocache"
	"geolocale/internal/iputil"
	"geolocale/internal/locale"
	"geolocale/models"
)

// Status distinguishes a genuine no-data answer from an upstream failure.
// Callers treat both as "could not determine location" but logs should not.
type Status int

const (
	StatusResolved Status = iota
	StatusNotFound
	StatusUpstreamError
)

// Resolution is the outcome of a lookup. Record is non-nil only for
// StatusResolved; Err is non-nil only for StatusUpstreamError.
type Resolution struct {
	Status Status
	Record *models.Geolocation
	Err    error
}

// Resolved reports whether the lookup produced a usable record.
func (r Resolution) Resolved() bool {
	return r.Status == StatusResolved && r.Record != nil
}

// Service resolves locations to locales from IPs or coordinates.
type Service struct {
	cache             geocache.Cache
	client            *http.Client
	ipAPIBaseURL      string
	reverseGeocodeURL string
	localTimezone     string
}

// NewService creates a resolver backed by the given cache.
func NewService(cfg *config.Config, cache geocache.Cache) *Service {
	return &Service{
		cache:             cache,
		client:            &http.Client{Timeout: cfg.ResolveTimeout},
		ipAPIBaseURL:      cfg.IPAPIBaseURL,
		reverseGeocodeURL: cfg.ReverseGeocodeURL,
		localTimezone:     localTimezone(),
	}
}

// ipAPIResponse mirrors the fields requested from the IP geolocation service.
type ipAPIResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Timezone    string `json:"timezone"`
}

// reverseGeocodeResponse mirrors the fields used from the reverse geocoder.
type reverseGeocodeResponse struct {
	CountryName          string `json:"countryName"`
	CountryCode          string `json:"countryCode"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	Locality             string `json:"locality"`
}

// defaultLocalRecord keeps local development working without network access.
func defaultLocalRecord() *models.Geolocation {
	return &models.Geolocation{
		Country:     "Turkey",
		CountryCode: "TR",
		Region:      "Istanbul",
		City:        "Istanbul",
		Timezone:    "Europe/Istanbul",
		Locale:      locale.Turkish,
	}
}

// ResolveIP resolves a client IP to a geolocation record. Loopback addresses
// short-circuit to a fixed default, cached entries are served without a
// network call, and any upstream problem is reported in the Resolution
// rather than returned as an error.
func (s *Service) ResolveIP(ctx context.Context, rawIP string) Resolution {
	ip := iputil.CleanIP(rawIP)

	if ip == "127.0.0.1" {
		return Resolution{Status: StatusResolved, Record: defaultLocalRecord()}
	}

	if record, ok := s.cache.Get(ip); ok {
		return Resolution{Status: StatusResolved, Record: record}
	}

	lookupURL := fmt.Sprintf("%s/%s?fields=status,message,country,countryCode,region,city,timezone",
		s.ipAPIBaseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("failed to build IP lookup request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("IP lookup request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("IP lookup returned HTTP %d", resp.StatusCode)}
	}

	var data ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("failed to decode IP lookup response: %w", err)}
	}

	if data.Status == "fail" {
		log.Printf("IP lookup has no data for %s: %s", ip, data.Message)
		return Resolution{Status: StatusNotFound}
	}

	record := &models.Geolocation{
		Country:     orUnknown(data.Country),
		CountryCode: firstNonEmpty(data.CountryCode, "XX"),
		Region:      orUnknown(data.Region),
		City:        orUnknown(data.City),
		Timezone:    firstNonEmpty(data.Timezone, "UTC"),
		Locale:      locale.FromCountryCode(data.CountryCode),
	}

	s.cache.Put(ip, record)
	return Resolution{Status: StatusResolved, Record: record}
}

// ResolveCoordinates reverse-geocodes browser coordinates to a record. The
// timezone comes from the serving environment rather than the geocoder,
// matching the browser-side behavior this path stands in for.
func (s *Service) ResolveCoordinates(ctx context.Context, latitude, longitude float64) Resolution {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.reverseGeocodeURL+"?"+query.Encode(), nil)
	if err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("failed to build reverse geocode request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("reverse geocode request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("reverse geocode returned HTTP %d", resp.StatusCode)}
	}

	var data reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Resolution{Status: StatusUpstreamError, Err: fmt.Errorf("failed to decode reverse geocode response: %w", err)}
	}

	record := &models.Geolocation{
		Country:     orUnknown(data.CountryName),
		CountryCode: firstNonEmpty(data.CountryCode, "XX"),
		Region:      orUnknown(data.PrincipalSubdivision),
		City:        orUnknown(data.Locality),
		Timezone:    s.localTimezone,
		Locale:      locale.FromCountryCode(data.CountryCode),
	}

	return Resolution{Status: StatusResolved, Record: record}
}

// LocaleForIP returns just the locale for an IP, defaulting when the
// location cannot be determined.
func (s *Service) LocaleForIP(ctx context.Context, rawIP string) locale.Locale {
	res := s.ResolveIP(ctx, rawIP)
	if !res.Resolved() {
		return locale.Default
	}
	return res.Record.Locale
}

const userAgent = "geolocale/1.0"

func orUnknown(s string) string {
	return firstNonEmpty(s, "Unknown")
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func localTimezone() string {
	tz := time.Local.String()
	if tz == "" || tz == "Local" {
		return "UTC"
	}
	return tz
}
