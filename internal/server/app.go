// Package server initializes and runs the expense service: it opens the
// database, applies migrations, wires the services, and starts the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/expensio/expensio/internal/logging"
	"github.com/expensio/expensio/internal/server/config"
	"github.com/expensio/expensio/internal/server/httpapi"
	"github.com/expensio/expensio/internal/server/repositories/repomanager"
	"github.com/expensio/expensio/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	identity := services.NewIdentityService(db, rm, cfg)
	expenses := services.NewExpenseService(db, rm)
	google := services.NewGoogleService(cfg)

	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, identity, expenses, google,
		[]byte(cfg.SecretKey), cfg.DesktopRedirectURL)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Error(ctx, "error closing db", "error", closeErr)
	}
	return err
}
