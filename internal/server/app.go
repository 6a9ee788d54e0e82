// Package server initializes and runs the account server.
// It opens the database, applies migrations, wires repositories and services,
// starts the HTTP API and the gRPC health endpoint, and handles graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/config"
	"github.com/vtnhan03/final-be/internal/server/google"
	"github.com/vtnhan03/final-be/internal/server/mailer"
	"github.com/vtnhan03/final-be/internal/server/repositories/repomanager"
	"github.com/vtnhan03/final-be/internal/server/rest"
	"github.com/vtnhan03/final-be/internal/server/services"

	gs "github.com/vtnhan03/final-be/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	mailer *mailer.Mailer
	http   *rest.HTTPServer
	grpc   *gs.GRPCServer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.New(c.Environment, os.Stdout)
	ctx := context.Background()

	db, err := dbx.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "database ready", "driver", c.DatabaseDriver)

	sender, err := mailer.NewSender(c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	m := mailer.New(sender, logger, c.FrontendURL, c.ResetTokenValidityDuration)

	clock := clockwork.NewRealClock()
	as := services.NewAccountService(db, rm, c, m, clock)
	rs := services.NewResetService(db, rm, c, m, clock, logger)
	gv := google.NewVerifier(c.GoogleUserinfoURL, c.GoogleTimeout)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		mailer: m,
		http:   rest.NewHTTPServer(c, logger, as, rs, gv),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, 15*time.Second),
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or one of the servers fails,
// then waits for pending emails and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "name", app.config.AppName, "version", app.config.AppVersion)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	wg.Wait()

	app.mailer.Wait()
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing database", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
