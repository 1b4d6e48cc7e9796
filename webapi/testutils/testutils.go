// Package testutils provides an in-process HTTP test suite. The app is
// wired against the in-memory fixture store so handler tests run without
// a database.
package testutils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"github.com/revobank/revobank/infra/revocation"
	"github.com/revobank/revobank/internal/fixtures"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/metrics"
	accountsvc "github.com/revobank/revobank/pkg/service/account"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	txsvc "github.com/revobank/revobank/pkg/service/transaction"
	usersvc "github.com/revobank/revobank/pkg/service/user"
	"github.com/revobank/revobank/webapi"
)

// ApiTestSuite runs the full Fiber app over an in-memory store.
type ApiTestSuite struct {
	suite.Suite

	Store *fixtures.Store
	App   *fiber.App
	Cfg   *config.App
}

func (s *ApiTestSuite) SetupTest() {
	s.Store = fixtures.NewStore()
	s.Cfg = &config.App{
		Env:       "test",
		Server:    &config.Server{Host: "localhost", Port: 8000},
		Log:       &config.Log{Format: "text"},
		Jwt:       &config.Jwt{Secret: "test-secret", Expiry: time.Hour},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Engine:    &config.Engine{LockRetries: 3, LockBackoff: time.Millisecond},
	}

	logger := slog.Default()
	uow := fixtures.NewUoW(s.Store)
	authSvc := authsvc.New(uow, revocation.NewMemoryStore(), s.Cfg.Jwt, logger)
	s.App = webapi.NewApp(webapi.Deps{
		Cfg:        s.Cfg,
		AccountSvc: accountsvc.New(uow, logger),
		TxSvc:      txsvc.New(uow, *s.Cfg.Engine, metrics.NewCollector(), logger),
		AuthSvc:    authSvc,
		UserSvc:    usersvc.New(uow, logger),
	})
}

// MakeRequest performs a request against the in-process app. An empty
// token leaves the request unauthenticated.
func (s *ApiTestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// SeedUser creates a user with the given role. The password is "password".
func (s *ApiTestSuite) SeedUser(username string, role user.Role) *user.User {
	return s.Store.AddUser(username, role)
}

// Login logs the seeded user in and returns the bearer token.
func (s *ApiTestSuite) Login(username string) string {
	body := fmt.Sprintf(`{"identity":%q,"password":"password"}`, username)
	resp := s.MakeRequest("POST", "/users/login", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	data := s.DecodeData(resp)
	token, _ := data["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

// DecodeData decodes the success envelope and returns its data object.
func (s *ApiTestSuite) DecodeData(resp *http.Response) map[string]any {
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

// DecodeProblem decodes an RFC 9457 problem response body.
func (s *ApiTestSuite) DecodeProblem(resp *http.Response) map[string]any {
	var problem map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	return problem
}
