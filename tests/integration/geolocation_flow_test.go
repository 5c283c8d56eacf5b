package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolocale/db"
	"geolocale/internal/admin"
	"geolocale/internal/auth"
	"geolocale/internal/config"
	"geolocale/internal/geocache"
	"geolocale/internal/geolocation"
	"geolocale/internal/locale"
	"geolocale/internal/locator"
	"geolocale/internal/ratelimit"
	"geolocale/internal/web"
	"geolocale/middleware"
	"geolocale/tests/testutils"
)

type env struct {
	server *testutils.TestServer
	repo   *db.LocaleCacheRepository
	cache  *geocache.MemoryCache
	cfg    *config.Config
}

func setupEnv(t *testing.T, ipAPIURL, reverseURL string) *env {
	t.Helper()

	conn, cleanup := testutils.SetupTestDatabase(t)
	t.Cleanup(cleanup)

	cfg := testutils.GetTestConfig()
	cfg.IPAPIBaseURL = ipAPIURL
	cfg.ReverseGeocodeURL = reverseURL

	repo := db.NewLocaleCacheRepository(conn, cfg.CacheTTL)
	cache := geocache.NewMemoryCache()
	limiter := ratelimit.NewMemoryLimiter()

	geoService := geolocation.NewService(cfg, cache)
	handler := web.NewHandler(
		geolocation.NewHandlers(geoService, limiter),
		admin.NewAdminHandlers(cache, repo),
		auth.NewAuthHandlers(cfg),
		middleware.NewMiddleware(cfg),
	)

	chain := middleware.SetupCORS()(middleware.RecoveryMiddleware(handler.SetupRoutes()))
	server := testutils.NewTestServer(t, chain)
	t.Cleanup(server.Close)

	return &env{server: server, repo: repo, cache: cache, cfg: cfg}
}

type grantedProvider struct {
	position locator.Position
}

func (p *grantedProvider) Permission() locator.Permission { return locator.PermissionGranted }

func (p *grantedProvider) CurrentPosition(ctx context.Context) (locator.Position, error) {
	return p.position, nil
}

func TestLocatorFlow_CoordinatePathThroughServer(t *testing.T) {
	reverse := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"countryName":"Serbia","countryCode":"RS","principalSubdivision":"Belgrade","locality":"Belgrade"}`)
	}))
	defer reverse.Close()

	e := setupEnv(t, "", reverse.URL)

	provider := &grantedProvider{position: locator.Position{Latitude: 44.79, Longitude: 20.45}}
	client := locator.NewAPIClient(e.server.URL)
	store := locator.NewRepositoryStore(e.repo, "")

	ctx := context.Background()
	l := locator.New(ctx, provider, client, store)
	require.Nil(t, l.Data())

	l.RequestLocation(ctx)

	require.NotNil(t, l.Data())
	assert.Equal(t, locale.Serbian, l.Locale())
	assert.Empty(t, l.Err())

	// A fresh locator on the same store starts already resolved, without
	// touching the network.
	fresh := locator.New(ctx, nil, locator.NewAPIClient("http://127.0.0.1:1"), store)
	require.NotNil(t, fresh.Data())
	assert.Equal(t, locale.Serbian, fresh.Locale())
}

func TestLocatorFlow_IPFallbackThroughServer(t *testing.T) {
	// The test server sees a loopback client, so the IP path resolves to
	// the local default without an external lookup.
	e := setupEnv(t, "http://127.0.0.1:1", "http://127.0.0.1:1")

	client := locator.NewAPIClient(e.server.URL)
	ctx := context.Background()

	l := locator.New(ctx, nil, client, nil)
	l.RequestLocation(ctx)

	require.NotNil(t, l.Data())
	assert.Equal(t, locale.Turkish, l.Locale())
	assert.Equal(t, "TR", l.Data().CountryCode)
}

func TestAdminFlow_LoginStatsClear(t *testing.T) {
	ipAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","countryCode":"DE","country":"Germany"}`)
	}))
	defer ipAPI.Close()

	e := setupEnv(t, ipAPI.URL, "")

	// Warm the cache through the public endpoint.
	resp := e.server.GET("/api/geolocation", map[string]string{"X-Forwarded-For": "203.0.113.5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Stats without a token are rejected.
	resp = e.server.GET("/api/admin/cache/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Log in, read stats, clear the cache.
	var login map[string]string
	resp = e.server.POST("/api/auth/login", map[string]string{
		"username": e.cfg.Username,
		"password": e.cfg.Password,
	}, nil)
	testutils.AssertJSONResponse(t, resp, http.StatusOK, &login)
	require.NotEmpty(t, login["token"])
	authHeader := map[string]string{"Authorization": "Bearer " + login["token"]}

	var stats struct {
		Success bool           `json:"success"`
		Stats   geocache.Stats `json:"stats"`
	}
	resp = e.server.GET("/api/admin/cache/stats", authHeader)
	testutils.AssertJSONResponse(t, resp, http.StatusOK, &stats)
	assert.True(t, stats.Success)
	assert.Equal(t, 1, stats.Stats.Size)
	assert.Equal(t, []string{"203.0.113.5"}, stats.Stats.Keys)

	resp = e.server.POST("/api/admin/cache/clear", nil, authHeader)
	testutils.AssertJSONResponse(t, resp, http.StatusOK, nil)

	resp = e.server.GET("/api/admin/cache/stats", authHeader)
	testutils.AssertJSONResponse(t, resp, http.StatusOK, &stats)
	assert.Equal(t, 0, stats.Stats.Size)
}

func TestHealthEndpoint(t *testing.T) {
	e := setupEnv(t, "", "")

	var body map[string]string
	resp := e.server.GET("/api/health", nil)
	testutils.AssertJSONResponse(t, resp, http.StatusOK, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRouteIs404(t *testing.T) {
	e := setupEnv(t, "", "")

	resp := e.server.GET("/api/nope", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerSurvivesSlowUpstream(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"status":"success","countryCode":"TR"}`)
	}))
	defer slow.Close()

	e := setupEnv(t, slow.URL, "")

	resp := e.server.GET("/api/geolocation", map[string]string{"X-Forwarded-For": "203.0.113.5"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
