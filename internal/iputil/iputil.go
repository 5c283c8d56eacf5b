package iputil

import (
	"net"
	"net/http"
	"strings"
)

// CleanIP normalizes a raw client address into a canonical cache key.
// Loopback in any of its spellings becomes "127.0.0.1", and for a
// comma-separated proxy chain the left-most entry is the original client.
func CleanIP(raw string) string {
	ip := strings.TrimSpace(raw)

	switch ip {
	case "::1", "::ffff:127.0.0.1", "127.0.0.1", "localhost":
		return "127.0.0.1"
	}

	if strings.Contains(ip, ",") {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}

	return ip
}

// IsLoopback reports whether the cleaned address denotes the local host.
func IsLoopback(ip string) bool {
	return CleanIP(ip) == "127.0.0.1"
}

// ClientIP extracts the client address from a request, walking the common
// proxy headers in trust order before falling back to the socket address.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return CleanIP(ip)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return CleanIP(xff)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return CleanIP(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return CleanIP(r.RemoteAddr)
	}
	return CleanIP(host)
}
