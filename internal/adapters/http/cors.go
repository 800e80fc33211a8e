package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Accept, Content-Type, Authorization"
	corsMaxAge       = "86400"
)

// corsMiddleware sets CORS headers for allowed origins and answers
// preflight requests without calling next.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		if origin != "" && s.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed checks if the given origin matches any allowed pattern.
func (s *Server) isOriginAllowed(origin string) bool {
	for _, pattern := range s.config.CORS.AllowedOrigins {
		if matchOrigin(origin, pattern) {
			return true
		}
	}
	return false
}

// matchOrigin reports whether origin matches pattern. A pattern is either
// an exact origin, "*" for any origin, or "*.example.com" for strict
// subdomains of example.com on any scheme and port.
func matchOrigin(origin, pattern string) bool {
	if pattern == "*" || origin == pattern {
		return true
	}
	suffix, ok := strings.CutPrefix(pattern, "*")
	if !ok || !strings.HasPrefix(suffix, ".") {
		return false
	}
	host := originHost(origin)
	return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
}

// originHost returns the lower-cased host of an origin without its port.
func originHost(origin string) string {
	if !strings.Contains(origin, "://") {
		origin = "//" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
