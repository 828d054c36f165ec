package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists routes reachable without a bearer token.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
	"/metrics":   true,
	"/login":     true,
	"/register":  true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether path is reachable without authentication.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
