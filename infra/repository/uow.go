// Package repository implements the unit of work over a GORM session and
// shared storage-error translation for the concrete repositories.
package repository

import (
	"context"
	"errors"

	infraaccount "github.com/revobank/revobank/infra/repository/account"
	infratransaction "github.com/revobank/revobank/infra/repository/transaction"
	infrauser "github.com/revobank/revobank/infra/repository/user"
	"github.com/revobank/revobank/pkg/repository"
	"gorm.io/gorm"
)

// UoW binds the transaction boundary and repository access together: every
// repository handed out inside Do shares the same database transaction, so
// a balance mutation and its ledger insert commit or roll back as one unit.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work over the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction, providing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// session returns the transaction session when inside Do, else the root
// connection for plain reads.
func (u *UoW) session() (*gorm.DB, error) {
	if u.tx != nil {
		return u.tx, nil
	}
	if u.db != nil {
		return u.db, nil
	}
	return nil, errors.New("unit of work has no database session")
}

// AccountRepository returns the account repository bound to this session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	session, err := u.session()
	if err != nil {
		return nil, err
	}
	return infraaccount.New(session), nil
}

// TransactionRepository returns the ledger repository bound to this session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	session, err := u.session()
	if err != nil {
		return nil, err
	}
	return infratransaction.New(session), nil
}

// UserRepository returns the user repository bound to this session.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	session, err := u.session()
	if err != nil {
		return nil, err
	}
	return infrauser.New(session), nil
}
