package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/apperr"
)

type contextKey string

type JWTConfig struct {
	SigningKey  []byte
	Revocations *TokenRevocationStore
	Resolver    ActorResolver
	// Skipper bypasses authentication when it returns true.
	Skipper func(c echo.Context) bool
}

// JWTMiddleware validates the bearer token, rejects revoked tokens and
// attaches the freshly resolved Actor to the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(defaultIssuer))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if cfg.Revocations != nil && cfg.Revocations.IsRevoked(claims.ID) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}

			userID, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			ctx := c.Request().Context()
			actor := &Actor{UserID: userID, Role: claims.Role}
			if cfg.Resolver != nil {
				actor, err = cfg.Resolver.ResolveActor(ctx, userID)
				if errors.Is(err, apperr.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
				}
				if err != nil {
					return err
				}
			}

			ctx = context.WithValue(ctx, TokenKey, claims)
			ctx = WithActor(ctx, actor)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
