// Package account exposes the account registry routes.
package account

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/middleware"
	accountsvc "github.com/revobank/revobank/pkg/service/account"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	"github.com/revobank/revobank/webapi/common"
)

// Routes registers the account routes. The type listing is public; every
// other route needs a bearer token.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc *authsvc.Service, cfg *config.Jwt) {
	app.Get("/accounts/types", Types(accountSvc))

	jwt := middleware.JwtProtected(cfg)
	withUser := middleware.WithUser(authSvc)
	app.Post("/accounts", jwt, withUser, Create(accountSvc))
	app.Get("/accounts", jwt, withUser, List(accountSvc))
	app.Get("/accounts/:id", jwt, withUser, Get(accountSvc))
	app.Put("/accounts/:id", jwt, withUser, UpdateStatus(accountSvc))
	app.Delete("/accounts/:id", jwt, withUser, Delete(accountSvc))
}

// Types lists the account types and their policies.
func Types(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account types", accountSvc.Types())
	}
}

// Create opens an account for the authenticated user.
func Create(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.Create(c.Context(), u, input.AccountType, input.InitialDeposit, input.Currency)
		if err != nil {
			log.Errorf("account creation failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", toRead(a))
	}
}

// List returns the authenticated user's accounts.
func List(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		filter := dto.AccountFilter{
			Type:   c.Query("type"),
			Status: c.Query("status"),
		}
		accounts, err := accountSvc.List(c.Context(), u, filter)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts", toReadList(accounts))
	}
}

// Get returns one account.
func Get(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return err
		}
		a, err := accountSvc.Get(c.Context(), u, id)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account", toRead(a))
	}
}

// UpdateStatus changes the account's lifecycle status.
func UpdateStatus(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[UpdateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.UpdateStatus(c.Context(), u, id, input.Status)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", toRead(a))
	}
}

// Delete removes a zero-balance account.
func Delete(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return err
		}
		if err := accountSvc.Delete(c.Context(), u, id); err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
