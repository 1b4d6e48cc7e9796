// Package user provides registration and profile management.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/repository"
	"github.com/revobank/revobank/pkg/utils"
)

// Service implements user registration and profile operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a user service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Register creates a customer user with a hashed password. Username and
// email must be unused.
func (s *Service) Register(ctx context.Context, username, email, name, password string) (*user.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsEmail(email) {
		return nil, user.ErrInvalidEmail
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Username:       username,
		Email:          email,
		Name:           name,
		HashedPassword: hashed,
		Role:           user.RoleCustomer,
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return user.ErrUsernameExists
		}
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return user.ErrEmailExists
		}
		if err := repo.Create(ctx, u); err != nil {
			// A concurrent registration can still win the unique index.
			if errors.Is(err, repository.ErrUniqueViolation) {
				return user.ErrUsernameExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uint) (*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// ProfileUpdate carries the optional profile fields an update can change.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateProfile applies a partial update to the actor's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor *user.User, update ProfileUpdate) (*user.User, error) {
	var updated *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := repo.Get(ctx, actor.ID)
		if err != nil {
			return err
		}
		if update.Name != nil {
			u.Name = strings.TrimSpace(*update.Name)
		}
		if update.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*update.Email))
			if !utils.IsEmail(email) {
				return user.ErrInvalidEmail
			}
			if email != u.Email {
				if _, err := repo.GetByEmail(ctx, email); err == nil {
					return user.ErrEmailExists
				}
				u.Email = email
			}
		}
		if update.Password != nil {
			hashed, err := utils.HashPassword(*update.Password)
			if err != nil {
				return err
			}
			u.HashedPassword = hashed
		}
		if err := repo.Update(ctx, u); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return user.ErrEmailExists
			}
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", updated.ID)
	return updated, nil
}
