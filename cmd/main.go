package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geolocale/db"
	"geolocale/internal/admin"
	"geolocale/internal/auth"
	"geolocale/internal/config"
	"geolocale/internal/geocache"
	"geolocale/internal/geolocation"
	"geolocale/internal/ratelimit"
	"geolocale/internal/web"
	"geolocale/middleware"
)

// Global loggers for different output streams
var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		errorLogger.Fatalf("Failed to initialize database schema: %v", err)
	}

	cacheRepo := db.NewLocaleCacheRepository(sqliteDB, cfg.CacheTTL)
	if err := cacheRepo.CleanupExpired(context.Background()); err != nil {
		infoLogger.Printf("Warning: failed to cleanup expired locale cache: %v", err)
	}

	cache := geocache.NewMemoryCacheWithOptions(cfg.CacheTTL, geocache.DefaultMaxEntries, time.Now)
	cache.StartJanitor(cfg.CacheTTL)
	defer cache.Stop()

	limiter := ratelimit.NewMemoryLimiterWithOptions(cfg.RateLimitMax, cfg.RateLimitWindow, time.Now)

	geoService := geolocation.NewService(cfg, cache)
	geoHandlers := geolocation.NewHandlers(geoService, limiter)
	adminHandlers := admin.NewAdminHandlers(cache, cacheRepo)
	authHandlers := auth.NewAuthHandlers(cfg)
	mw := middleware.NewMiddleware(cfg)

	handler := web.NewHandler(geoHandlers, adminHandlers, authHandlers, mw)
	router := handler.SetupRoutes()

	chain := middleware.LoggingMiddleware(
		middleware.SetupCORS()(
			middleware.RecoveryMiddleware(router)))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: chain,
	}

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	infoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		errorLogger.Printf("Server shutdown error: %v", err)
	}

	infoLogger.Println("Server stopped")
}
