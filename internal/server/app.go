// Package server initializes and runs the eCabinet server: it opens the
// database, runs migrations, wires services to the HTTP/WebSocket endpoint
// and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/api"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/repomanager"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/services"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/storage"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *api.API
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs := storage.NewBlobStore(cfg)
	h := hub.New()

	us := services.NewUserService(db, repos, h, cfg, logger)
	ds := services.NewDocumentService(db, repos, blobs, h, cfg, logger)
	ss := services.NewScheduleService(db, repos, h, logger)

	a := api.New(us, ds, ss, h, cfg, logger)

	return &App{config: cfg, logger: logger, db: db, api: a}, nil
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

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
