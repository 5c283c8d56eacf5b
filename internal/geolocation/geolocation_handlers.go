package geolocation

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"geolocale/internal/iputil"
	"geolocale/internal/ratelimit"
	"geolocale/models"
)

// Handlers exposes the resolver over HTTP.
type Handlers struct {
	Service *Service
	Limiter ratelimit.Limiter
}

// NewHandlers creates geolocation HTTP handlers.
func NewHandlers(service *Service, limiter ratelimit.Limiter) *Handlers {
	return &Handlers{Service: service, Limiter: limiter}
}

type successResponse struct {
	Success   bool                `json:"success"`
	Data      *models.Geolocation `json:"data"`
	IP        string              `json:"ip"`
	Timestamp string              `json:"timestamp"`
}

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ResolveByIP handles GET: locale resolution from the client's IP.
func (h *Handlers) ResolveByIP(w http.ResponseWriter, r *http.Request) {
	ip := iputil.ClientIP(r)

	if limited := h.checkRateLimit(w, "geolocation:get", ip); limited {
		return
	}

	res := h.Service.ResolveIP(r.Context(), ip)
	if !res.Resolved() {
		if res.Status == StatusUpstreamError {
			log.Printf("IP geolocation upstream error for %s: %v", ip, res.Err)
		}
		writeError(w, http.StatusBadRequest, "Unable to determine location")
		return
	}

	// Successive requests from the same network path resolve identically,
	// so let the browser hold on to the answer for a while.
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeSuccess(w, res.Record, ip)
}

// ResolveByCoordinates handles POST: locale resolution from browser
// coordinates.
func (h *Handlers) ResolveByCoordinates(w http.ResponseWriter, r *http.Request) {
	ip := iputil.ClientIP(r)

	if limited := h.checkRateLimit(w, "geolocation:post", ip); limited {
		return
	}

	var body coordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Latitude == nil || body.Longitude == nil {
		writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	res := h.Service.ResolveCoordinates(r.Context(), *body.Latitude, *body.Longitude)
	if !res.Resolved() {
		if res.Status == StatusUpstreamError {
			log.Printf("reverse geocoding upstream error for %s: %v", ip, res.Err)
		}
		writeError(w, http.StatusBadRequest, "Unable to determine location")
		return
	}

	writeSuccess(w, res.Record, ip)
}

// checkRateLimit counts the request and writes a 429 when over the limit.
func (h *Handlers) checkRateLimit(w http.ResponseWriter, endpoint, ip string) bool {
	res := h.Limiter.Check(endpoint, ip)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

	if res.Allowed {
		return false
	}

	retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
	return true
}

func writeSuccess(w http.ResponseWriter, record *models.Geolocation, ip string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(successResponse{
		Success:   true,
		Data:      record,
		IP:        ip,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
