// Package auth issues and validates JWT access tokens and supports logout
// through a shared revocation store.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/repository"
	"github.com/revobank/revobank/pkg/utils"

	"log/slog"
)

// dummyHash is compared when the identity does not resolve to a user, so a
// failed lookup takes as long as a failed password check.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service authenticates users and manages token lifecycle.
type Service struct {
	uow        repository.UnitOfWork
	revocation repository.RevocationStore
	cfg        *config.Jwt
	logger     *slog.Logger
}

// New creates an auth service.
func New(
	uow repository.UnitOfWork,
	revocation repository.RevocationStore,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, revocation: revocation, cfg: cfg, logger: logger}
}

// Login authenticates by username or email and returns a signed token with
// the authenticated user. Lookup and password failures are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, identity, password string) (string, *user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return "", nil, err
	}

	var u *user.User
	if utils.IsEmail(identity) {
		u, err = repo.GetByEmail(ctx, identity)
	} else {
		u, err = repo.GetByUsername(ctx, identity)
	}
	if err != nil {
		// Burn a hash comparison anyway to keep timing uniform.
		_ = utils.CheckPasswordHash(password, dummyHash)
		s.logger.Warn("login failed", "identity", identity)
		return "", nil, user.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) {
		s.logger.Warn("login failed", "identity", identity)
		return "", nil, user.ErrUserUnauthorized
	}

	token, err := s.GenerateToken(u)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("login successful", "user_id", u.ID)
	return token, u, nil
}

// Refresh re-issues a token for a still-valid bearer. The new token carries
// a fresh token ID and expiry; the presented one stays usable until it
// expires or is revoked by logout.
func (s *Service) Refresh(ctx context.Context, token *jwt.Token) (string, *user.User, error) {
	u, err := s.CurrentUser(ctx, token)
	if err != nil {
		return "", nil, err
	}
	fresh, err := s.GenerateToken(u)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("token refreshed", "user_id", u.ID)
	return fresh, u, nil
}

// GenerateToken signs an HS256 token carrying the user's identity, role and
// a unique token ID used for revocation.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID
	claims["username"] = u.Username
	claims["email"] = u.Email
	claims["role"] = string(u.Role)
	claims["jti"] = uuid.NewString()
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

// Logout revokes the token's ID for its remaining lifetime. Subsequent
// requests carrying the token are rejected even though the signature is
// still valid.
func (s *Service) Logout(ctx context.Context, token *jwt.Token) error {
	jti, exp, err := tokenIdentity(token)
	if err != nil {
		return err
	}
	ttl := time.Until(exp)
	if err := s.revocation.Revoke(ctx, jti, ttl); err != nil {
		return err
	}
	s.logger.Info("token revoked", "jti", jti)
	return nil
}

// CurrentUser resolves the bearer token to a live user, rejecting revoked
// tokens.
func (s *Service) CurrentUser(ctx context.Context, token *jwt.Token) (*user.User, error) {
	jti, _, err := tokenIdentity(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocation.IsRevoked(ctx, jti)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, user.ErrUserUnauthorized
	}

	userID, err := UserID(token)
	if err != nil {
		return nil, err
	}
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, user.ErrUserUnauthorized
	}
	return u, nil
}

// UserID extracts the user ID claim from a verified token.
func UserID(token *jwt.Token) (uint, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, user.ErrUserUnauthorized
	}
	// JSON numbers decode as float64.
	raw, ok := claims["user_id"].(float64)
	if !ok || raw < 1 {
		return 0, user.ErrUserUnauthorized
	}
	return uint(raw), nil
}

// tokenIdentity extracts the token ID and expiry claims.
func tokenIdentity(token *jwt.Token) (string, time.Time, error) {
	if token == nil {
		return "", time.Time{}, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, user.ErrUserUnauthorized
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return "", time.Time{}, user.ErrUserUnauthorized
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, user.ErrUserUnauthorized
	}
	return jti, exp.Time, nil
}
