package middleware

import (
	"net/http"
	"strings"

	"railtrace/pkg/jwtutil"
	"railtrace/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and stores the caller's identity.
// The token is read from the Authorization header (mobile clients) with a
// cookie fallback (browser clients).
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		var tokenString string

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}
			tokenString = parts[1]
		} else if cookie, err := c.Cookie("access_token"); err == nil {
			tokenString = cookie.Value
		}

		if tokenString == "" {
			log.Warn("Missing authorization token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		return next(c)
	}
}

// RequireRole restricts a route group to the given roles. Must run after
// AuthMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			role, _ := c.Get("role").(string)
			if !allowed[role] {
				log.Warn("Role not authorized for route",
					zap.String("role", role),
					zap.String("path", c.Path()))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized for this operation"})
			}

			return next(c)
		}
	}
}

// UsernameFromContext retrieves the authenticated username from the context
func UsernameFromContext(c echo.Context) string {
	username, _ := c.Get("username").(string)
	return username
}

// RoleFromContext retrieves the authenticated role from the context
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
