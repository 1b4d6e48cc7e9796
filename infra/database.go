// Package infra wires concrete storage implementations: the database
// connection, GORM-backed repositories and the unit of work.
package infra

import (
	"errors"
	"strings"
	"time"

	infraaccount "github.com/revobank/revobank/infra/repository/account"
	infratransaction "github.com/revobank/revobank/infra/repository/transaction"
	infrauser "github.com/revobank/revobank/infra/repository/user"
	"github.com/revobank/revobank/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the application database. Postgres is used in
// production; a sqlite URL (file: or :memory:) is accepted for local runs
// and tests.
func NewDBConnection(cfg *config.DB, appEnv string) (*gorm.DB, error) {
	if cfg == nil || cfg.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var (
		conn *gorm.DB
		err  error
	)
	if strings.HasPrefix(cfg.Url, "file:") || cfg.Url == ":memory:" {
		conn, err = gorm.Open(sqlite.Open(cfg.Url), gormCfg)
	} else {
		conn, err = gorm.Open(postgres.Open(cfg.Url), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return conn, nil
}

// Migrate creates or updates the schema for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&infrauser.User{},
		&infraaccount.Account{},
		&infratransaction.Transaction{},
	)
}
