package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"geolocale/internal/admin"
	"geolocale/internal/auth"
	"geolocale/internal/geolocation"
	"geolocale/middleware"
)

// Handler groups the HTTP surface of the service.
type Handler struct {
	Geolocation *geolocation.Handlers
	Admin       *admin.AdminHandlers
	Auth        *auth.AuthHandlers
	Middleware  *middleware.Middleware
}

func NewHandler(geo *geolocation.Handlers, adm *admin.AdminHandlers, authHandlers *auth.AuthHandlers, mw *middleware.Middleware) *Handler {
	return &Handler{
		Geolocation: geo,
		Admin:       adm,
		Auth:        authHandlers,
		Middleware:  mw,
	}
}

func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/geolocation", h.Geolocation.ResolveByIP).Methods("GET")
	api.HandleFunc("/geolocation", h.Geolocation.ResolveByCoordinates).Methods("POST")

	api.HandleFunc("/auth/login", h.Auth.LoginHandler).Methods("POST")

	// Admin endpoints require a valid token
	api.HandleFunc("/admin/cache/stats", h.Middleware.AuthMiddleware(h.Admin.CacheStats)).Methods("GET")
	api.HandleFunc("/admin/cache/clear", h.Middleware.AuthMiddleware(h.Admin.ClearCache)).Methods("POST")

	api.HandleFunc("/health", h.Health).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
}
