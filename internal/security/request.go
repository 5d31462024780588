package security

import (
	"fmt"
	"net/http"
	"strings"
)

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	// Direct TLS connection
	if r.TLS != nil {
		return true
	}

	// Behind reverse proxy (nginx, Caddy, load balancer, etc.)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}

	return r.URL.Scheme == "https"
}

// BaseURL returns configured when set, otherwise the scheme and host the request arrived on
func BaseURL(r *http.Request, configured string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if IsSecureRequest(r) {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
