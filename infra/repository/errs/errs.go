// Package errs translates GORM and driver errors into the repository
// error vocabulary.
package errs

import (
	"errors"
	"strings"

	"github.com/revobank/revobank/pkg/repository"
	"gorm.io/gorm"
)

// MapError converts storage errors to the repository error vocabulary so
// the service layer never inspects driver errors. notFound is the domain
// error to use for gorm.ErrRecordNotFound.
func MapError(err, notFound error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrUniqueViolation
	case isLockNotAvailable(err):
		return repository.ErrLockNotAvailable
	}
	return err
}

// isLockNotAvailable detects a failed NOWAIT row lock. Postgres reports
// SQLSTATE 55P03; there is no GORM sentinel for it.
func isLockNotAvailable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "55P03") ||
		strings.Contains(msg, "could not obtain lock")
}
