// Package user exposes registration, login, logout and profile routes.
package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/middleware"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	usersvc "github.com/revobank/revobank/pkg/service/user"
	"github.com/revobank/revobank/webapi/common"
)

// Routes registers the user and session routes.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.Jwt) {
	app.Post("/users", Register(userSvc))
	app.Post("/users/login", Login(authSvc))

	jwt := middleware.JwtProtected(cfg)
	withUser := middleware.WithUser(authSvc)
	app.Post("/users/refresh", jwt, Refresh(authSvc))
	app.Post("/users/logout", jwt, withUser, Logout(authSvc))
	app.Get("/users/me", jwt, withUser, Me())
	app.Put("/users/me", jwt, withUser, UpdateProfile(userSvc))
}

// Register creates a customer user.
func Register(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Register(c.Context(), input.Username, input.Email, input.Name, input.Password)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", toRead(u))
	}
}

// Login authenticates by username or email and issues a bearer token.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		token, u, err := authSvc.Login(c.Context(), input.Identity, input.Password)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Login successful", fiber.Map{
			"token": token,
			"user":  toRead(u),
		})
	}
}

// Refresh issues a new token for a still-valid bearer.
func Refresh(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := common.BearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		fresh, u, err := authSvc.Refresh(c.Context(), token)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Token refreshed", fiber.Map{
			"token": fresh,
			"user":  toRead(u),
		})
	}
}

// Logout revokes the presented token.
func Logout(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := common.BearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		if err := authSvc.Logout(c.Context(), token); err != nil {
			log.Errorf("logout failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Logged out", nil)
	}
}

// Me returns the authenticated user's profile.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile", toRead(u))
	}
}

// UpdateProfile applies a partial update to the authenticated user.
func UpdateProfile(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		input, err := common.BindAndValidate[UpdateProfileRequest](c)
		if input == nil {
			return err
		}
		updated, err := userSvc.UpdateProfile(c.Context(), u, usersvc.ProfileUpdate{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile updated", toRead(updated))
	}
}
