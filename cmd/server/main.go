package main

import (
	"fmt"
	"log/slog"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/revobank/revobank/infra"
	infrarepo "github.com/revobank/revobank/infra/repository"
	"github.com/revobank/revobank/infra/revocation"
	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/metrics"
	"github.com/revobank/revobank/pkg/repository"
	accountsvc "github.com/revobank/revobank/pkg/service/account"
	authsvc "github.com/revobank/revobank/pkg/service/auth"
	txsvc "github.com/revobank/revobank/pkg/service/transaction"
	usersvc "github.com/revobank/revobank/pkg/service/user"
	"github.com/revobank/revobank/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infra.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var revocationStore repository.RevocationStore
	if cfg.Redis.URL != "" {
		store, err := revocation.NewRedisStore(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to revocation store: %w", err)
		}
		defer store.Close()
		revocationStore = store
	} else {
		logger.Warn("no redis URL configured, revocations will not survive restarts")
		revocationStore = revocation.NewMemoryStore()
	}

	uow := infrarepo.NewUoW(db)
	collector := metrics.NewCollector()
	deps := webapi.Deps{
		Cfg:        cfg,
		AccountSvc: accountsvc.New(uow, logger),
		TxSvc:      txsvc.New(uow, *cfg.Engine, collector, logger),
		AuthSvc:    authsvc.New(uow, revocationStore, cfg.Jwt, logger),
		UserSvc:    usersvc.New(uow, logger),
		Metrics:    collector,
	}
	app := webapi.NewApp(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr)
	return app.Listen(addr)
}

func newLogger(cfg *config.Log) *slog.Logger {
	level := slog.Level(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
