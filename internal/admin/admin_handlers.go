package admin

import (
	"encoding/json"
	"log"
	"net/http"

	"geolocale/db"
	"geolocale/internal/geocache"
)

// AdminHandlers exposes cache maintenance operations for the dashboard.
type AdminHandlers struct {
	Cache geocache.Cache
	Repo  *db.LocaleCacheRepository
}

func NewAdminHandlers(cache geocache.Cache, repo *db.LocaleCacheRepository) *AdminHandlers {
	return &AdminHandlers{Cache: cache, Repo: repo}
}

// CacheStats responds with the in-memory cache contents.
func (h *AdminHandlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Cache.Stats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// ClearCache drops the in-memory cache and prunes expired persisted rows.
func (h *AdminHandlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Cache.Clear()

	if h.Repo != nil {
		if err := h.Repo.CleanupExpired(r.Context()); err != nil {
			log.Printf("Failed to cleanup expired locale cache: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
