package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig configures SecurityHeaders.
type SecurityConfig struct {
	// NoStorePrefix marks responses under this path as uncacheable.
	NoStorePrefix string

	// CacheablePrefixes are exempt from NoStorePrefix. Poster files live here.
	CacheablePrefixes []string
}

// DefaultSecurityConfig disables caching for the JSON API but not for poster files.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		NoStorePrefix:     "/api",
		CacheablePrefixes: []string{"/api/v1/posters/file/"},
	}
}

func SecurityHeaders() echo.MiddlewareFunc {
	return SecurityHeadersWithConfig(DefaultSecurityConfig())
}

func SecurityHeadersWithConfig(cfg SecurityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")

			path := c.Request().URL.Path
			if cfg.NoStorePrefix != "" && strings.HasPrefix(path, cfg.NoStorePrefix) && !cacheable(path, cfg.CacheablePrefixes) {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}

func cacheable(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
