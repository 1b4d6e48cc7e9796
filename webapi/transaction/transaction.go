// Package transaction exposes the transaction engine routes: deposits,
// withdrawals, transfers, the approval endpoint and ledger queries.
package transaction

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/middleware"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	txsvc "github.com/revobank/revobank/pkg/service/transaction"
	"github.com/revobank/revobank/webapi/common"
)

// Routes registers the transaction routes. All of them need a bearer token.
func Routes(app *fiber.App, txSvc *txsvc.Service, authSvc *authsvc.Service, cfg *config.Jwt) {
	jwt := middleware.JwtProtected(cfg)
	withUser := middleware.WithUser(authSvc)
	app.Post("/transactions/deposit", jwt, withUser, Deposit(txSvc))
	app.Post("/transactions/withdraw", jwt, withUser, Withdraw(txSvc))
	app.Post("/transactions/transfer", jwt, withUser, Transfer(txSvc))
	app.Get("/transactions", jwt, withUser, List(txSvc))
	app.Get("/transactions/:id", jwt, withUser, Get(txSvc))
	app.Post("/transactions/admin/approve/:id", jwt, withUser, Approve(txSvc))
}

// Deposit credits one of the caller's accounts.
func Deposit(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		entry, err := txSvc.Deposit(c.Context(), u, input.AccountID, input.Amount,
			input.Currency, input.Description, input.IdempotencyKey)
		if err != nil {
			log.Errorf("deposit failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Deposit completed", toRead(entry))
	}
}

// Withdraw debits one of the caller's accounts.
func Withdraw(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		entry, err := txSvc.Withdraw(c.Context(), u, input.AccountID, input.Amount,
			input.Currency, input.Description, input.IdempotencyKey)
		if err != nil {
			log.Errorf("withdrawal failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal completed", toRead(entry))
	}
}

// Transfer moves funds between accounts. A transfer above the high-value
// threshold is accepted but answers 202 until approved.
func Transfer(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		entry, err := txSvc.Transfer(c.Context(), u, input.FromAccountID, input.ToAccountID,
			input.Amount, input.Currency, input.Description, input.IdempotencyKey)
		if err != nil {
			log.Errorf("transfer failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		if entry.Status == transaction.StatusPendingApproval {
			return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Transfer pending approval", toRead(entry))
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer completed", toRead(entry))
	}
}

// List returns a filtered page of the caller's ledger entries.
func List(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		filter := dto.TransactionFilter{
			AccountID: uint(c.QueryInt("account_id")),
			Type:      c.Query("type"),
			Status:    c.Query("status"),
		}
		if raw := c.Query("start"); raw != "" {
			start, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid start time")
			}
			filter.Start = &start
		}
		if raw := c.Query("end"); raw != "" {
			end, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid end time")
			}
			filter.End = &end
		}

		page, err := txSvc.List(c.Context(), u, filter, c.QueryInt("page", 1), c.QueryInt("limit", 10))
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", toReadPage(page))
	}
}

// Get returns one ledger entry.
func Get(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return err
		}
		entry, err := txSvc.Get(c.Context(), u, id)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction", toRead(entry))
	}
}

// Approve settles a pending high-value transfer.
func Approve(txSvc *txsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := common.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user context")
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return err
		}
		entry, err := txSvc.Approve(c.Context(), u, id)
		if err != nil {
			log.Errorf("approval failed: %v", err)
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer approved", toRead(entry))
	}
}
