// Package server wires the daemon together: configuration, logging, the
// credential store and the dict listener, with graceful shutdown on the
// usual signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/doveauthd/internal/logging"
	"github.com/dmitrijs2005/doveauthd/internal/server/config"
	"github.com/dmitrijs2005/doveauthd/internal/server/dict"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/doveauthd/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	return &App{config: c, logger: logger}, nil
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

// Run opens the credential store, brings its schema up to date and serves
// dict lookups until ctx is cancelled or a signal arrives. A store written
// by a newer release aborts startup here, before the listener binds.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	db, err := repomanager.Open(app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	m, err := repomanager.NewSQLiteRepositoryManager()
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	if err := m.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("schema init error: %w", err)
	}

	svc := services.NewAccountService(db, m, app.config)
	srv := dict.NewServer(app.config.ListenAddr, dict.NewHandler(svc, app.logger), app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	return nil
}
