// Package common provides shared HTTP helpers: request binding,
// response envelopes and the domain-error to status-code mapping.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/revobank/revobank/pkg/currency"
	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/money"
	"github.com/revobank/revobank/pkg/repository"
)

// Response is the standard envelope for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the success envelope with the given status.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON writes an RFC 9457 problem response.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	if err := c.Status(status).JSON(pd); err != nil {
		return err
	}
	// JSON above stamps application/json, override it afterwards.
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return nil
}

// DomainErrorJSON maps a service error to its problem response. Unexpected
// errors become an opaque 500; their detail is only ever logged server-side.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	status := ErrorToStatusCode(err)
	if status == fiber.StatusInternalServerError {
		return ErrorResponseJSON(c, status, "Internal Server Error", nil)
	}
	return ErrorResponseJSON(c, status, err.Error(), nil)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidStatus),
		errors.Is(err, account.ErrInvalidAccountType),
		errors.Is(err, account.ErrInvalidStatus),
		errors.Is(err, account.ErrSameAccount),
		errors.Is(err, account.ErrInsufficientInitialDeposit),
		errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrAccountNotActive),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrExcessPrecision),
		errors.Is(err, money.ErrAmountOutOfRange):
		return fiber.StatusBadRequest
	case errors.Is(err, money.ErrInvalidCurrencyCode),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, user.ErrUserUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, user.ErrPermissionDenied),
		errors.Is(err, account.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, account.ErrNonZeroBalance),
		errors.Is(err, transaction.ErrNotPendingApproval),
		errors.Is(err, transaction.ErrInvalidTransition),
		errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, repository.ErrUniqueViolation),
		errors.Is(err, repository.ErrLockNotAvailable):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates it. On
// failure the error response has already been written.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}

// BearerToken returns the verified JWT set by the auth middleware.
func BearerToken(c *fiber.Ctx) (*jwt.Token, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	return token, ok && token != nil
}

// CurrentUser returns the resolved user set by the auth middleware.
func CurrentUser(c *fiber.Ctx) (*user.User, bool) {
	u, ok := c.Locals("currentUser").(*user.User)
	return u, ok && u != nil
}

// ParseIDParam parses a positive numeric path parameter.
func ParseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
