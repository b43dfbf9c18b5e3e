package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const claimsContextKey = "auth.claims"

// Middleware rejects requests without a valid token. A nil validator disables the check.
func Middleware(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if validator == nil {
				return next(c)
			}
			claims, err := validator.Validate(ExtractToken(c.Request(), "token"))
			if err != nil {
				slog.Warn("auth rejected request", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
				if errors.Is(err, ErrMissingToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Middleware, or nil when auth is disabled.
func ClaimsFrom(c echo.Context) *Claims {
	claims, _ := c.Get(claimsContextKey).(*Claims)
	return claims
}
