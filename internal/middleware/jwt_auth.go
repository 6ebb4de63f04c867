package middleware

import (
	"net/http"

	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

// JWTAuthMiddleware reads the raw token from header, verifies it and stores
// the user id under UserIDKey.
func JWTAuthMiddleware(header string, verifier TokenVerifier, m *metrics.Metrics, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(header)
			if token == "" {
				m.AuthFailed("missing_token")
				return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				m.AuthFailed("invalid_token")
				log.WithFields(logrus.Fields{
					"path":       c.Path(),
					"remote_ip":  c.RealIP(),
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				}).WithError(err).Warn("rejected token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the id stored by JWTAuthMiddleware.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok
}
