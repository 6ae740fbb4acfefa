package server

import (
	"net/http"
	"strings"
)

// SecurityConfig controls the security headers, CORS policy and input
// limits of the server.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxInputLength bounds the length of the text a request may convert.
	MaxInputLength int
	// MaxFormatPrecision bounds the precision of the format specifier,
	// which sets the minimum length of the result.
	MaxFormatPrecision int
}

// DefaultSecurityConfig returns a permissive CORS policy for the read-only
// API, a one million character input limit and the same bound on format
// precision.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:         true,
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "OPTIONS"},
		MaxInputLength:     1_000_000,
		MaxFormatPrecision: 1_000_000,
	}
}

// SecurityMiddleware sets the security headers on every response, applies
// the CORS policy and answers preflight requests itself.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the Access-Control-Allow-Origin value for origin.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if origin != "" && a == origin {
			return origin, true
		}
	}
	return "", false
}
