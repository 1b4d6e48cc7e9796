// Package middleware provides the authentication middleware chain: JWT
// signature verification, revocation-aware user resolution and permission
// gates.
package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/domain/user"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
)

// JwtProtected verifies the bearer token signature and expiry and stores
// the parsed token in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "missing or malformed jwt") {
		return fiber.NewError(fiber.StatusBadRequest, "Missing or malformed JWT")
	}
	return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
}

// WithUser resolves the verified token to a live user, rejecting revoked
// tokens, and stores it in c.Locals("currentUser"). Must run after
// JwtProtected.
func WithUser(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		u, err := svc.CurrentUser(c.Context(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
		}
		c.Locals("currentUser", u)
		return c.Next()
	}
}

// RequirePermission rejects requests whose user lacks the capability. Must
// run after WithUser.
func RequirePermission(perm user.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := c.Locals("currentUser").(*user.User)
		if !ok || u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		if !u.HasPermission(perm) {
			return fiber.NewError(fiber.StatusForbidden, "permission denied")
		}
		return c.Next()
	}
}
