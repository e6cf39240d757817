// Package server initializes and runs the portal application: it opens the
// auth store and the per-realm game stores, runs migrations, wires the
// services, and serves the HTTP surface until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/httpapi"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
	"github.com/tavrin/realmportal/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	authDB   *sql.DB
	registry *realms.Registry
	api      *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	authDB, err := sql.Open("pgx", cfg.AuthDatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("auth db open error: %w", err)
	}
	authDB.SetMaxOpenConns(8)
	authDB.SetMaxIdleConns(4)

	authManager := repomanager.NewPostgresAuthManager()
	if err := authManager.RunMigrations(ctx, authDB); err != nil {
		return nil, fmt.Errorf("auth migration error: %w", err)
	}

	realmManager := repomanager.NewPostgresRealmManager()
	registry, err := realms.NewRegistry(ctx, cfg.Realms, realmManager.RunMigrations)
	if err != nil {
		return nil, fmt.Errorf("realm init error: %w", err)
	}

	accounts := services.NewAccountService(authDB, authManager, cfg, logger)
	engine := services.NewDeliveryEngine(registry, realmManager, logger)
	shop := services.NewShopService(engine, registry, realmManager, cfg, logger)
	gmmail := services.NewGMMailService(engine, accounts, cfg, logger)

	api := httpapi.NewServer(cfg, logger, accounts, shop, gmmail)

	return &App{config: cfg, logger: logger, authDB: authDB, registry: registry, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.registry.Close()
	if err := app.authDB.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
