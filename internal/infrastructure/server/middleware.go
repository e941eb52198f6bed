package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpHandlers "github.com/stickyboard/core/internal/adapters/http"
)

// authMiddleware turns a bearer token into the request's board actor.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := s.services.Auth.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", map[string]interface{}{
					"error": err.Error(),
					"ip":    c.RealIP(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			httpHandlers.SetActor(c, s.services.Auth.ActorFromClaims(claims))
			return next(c)
		}
	}
}

// nonceMiddleware checks the anti-forgery token on board writes and
// issues one on reads.
func (s *Server) nonceMiddleware() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + NonceHeader,
		ContextKey:     httpHandlers.NonceContextKey,
		CookieName:     "_sticky_nonce",
		CookiePath:     boardPrefix,
		CookieMaxAge:   86400,
		CookieHTTPOnly: true,
		CookieSecure:   s.config.Security.CSRFCookieSecure,
		CookieSameSite: http.SameSiteStrictMode,
		ErrorHandler: func(err error, c echo.Context) error {
			s.logger.LogSecurityEvent("invalid_nonce", httpHandlers.ActorFrom(c).ID, map[string]interface{}{
				"path": c.Request().URL.Path,
				"ip":   c.RealIP(),
			})
			return echo.NewHTTPError(http.StatusForbidden, "Invalid nonce")
		},
	})
}
