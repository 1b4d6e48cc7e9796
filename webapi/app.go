// Package webapi assembles the HTTP application: middleware chain, health
// and metrics endpoints, and the route sets of the handler packages.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/metrics"
	accountsvc "github.com/revobank/revobank/pkg/service/account"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	txsvc "github.com/revobank/revobank/pkg/service/transaction"
	usersvc "github.com/revobank/revobank/pkg/service/user"
	accountapi "github.com/revobank/revobank/webapi/account"
	"github.com/revobank/revobank/webapi/common"
	transactionapi "github.com/revobank/revobank/webapi/transaction"
	userapi "github.com/revobank/revobank/webapi/user"
)

// Deps bundles everything the HTTP app needs.
type Deps struct {
	Cfg        *config.App
	AccountSvc *accountsvc.Service
	TxSvc      *txsvc.Service
	AuthSvc    *authsvc.Service
	UserSvc    *usersvc.Service
	Metrics    *metrics.Collector
}

// NewApp builds the Fiber app with rate limiting, panic recovery, the
// health and metrics endpoints, and all route sets.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "revobank",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return common.ErrorResponseJSON(c, e.Code, e.Message, nil)
			}
			return common.ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        deps.Cfg.RateLimit.MaxRequests,
		Expiration: deps.Cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	userapi.Routes(app, deps.UserSvc, deps.AuthSvc, deps.Cfg.Jwt)
	accountapi.Routes(app, deps.AccountSvc, deps.AuthSvc, deps.Cfg.Jwt)
	transactionapi.Routes(app, deps.TxSvc, deps.AuthSvc, deps.Cfg.Jwt)

	return app
}
