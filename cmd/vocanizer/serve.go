package main

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

	"github.com/leventyarali/vocanizer-sub000/internal/api"
	"github.com/leventyarali/vocanizer-sub000/internal/api/middleware"
	"github.com/leventyarali/vocanizer-sub000/internal/config"
	"github.com/leventyarali/vocanizer-sub000/internal/maintenance"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/postgres"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
	"github.com/leventyarali/vocanizer-sub000/internal/service/auth"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tasks HTTP API",
		Long: `Run the tasks HTTP API until SIGINT or SIGTERM.

The purge job for old completed occurrences is scheduled alongside the
server unless maintenance.enabled is false.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}

	return cmd
}

func runServe(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"maintenance_enabled", cfg.Maintenance.Enabled)

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.run(ctx)
}

// application holds the shared dependencies of the running server so they
// can be shut down in order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskService service.TaskService
	jwtService  auth.JWTService
	rateLimiter *middleware.RateLimiter
	purger      *maintenance.Purger // nil when maintenance is disabled
}

func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	taskStore := postgres.NewPostgresTaskStore(db, log)

	var err error
	app.taskService, err = service.NewTaskService(taskStore, db, log,
		service.WithMaxOccurrences(cfg.Recurrence.MaxOccurrences))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit)

	if cfg.Maintenance.Enabled {
		app.purger, err = maintenance.NewPurger(taskStore, cfg.Maintenance, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize maintenance job: %w", err)
		}
	}

	return app, nil
}

func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		TaskService: app.taskService,
		JWTService:  app.jwtService,
		RateLimiter: app.rateLimiter,
		Logger:      app.logger,
	})
}

func (app *application) httpServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.router(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}
}

// run serves HTTP until ctx is canceled or the listener fails, then shuts
// everything down.
func (app *application) run(ctx context.Context) error {
	server := app.httpServer()

	if app.purger != nil {
		if err := app.purger.Start(); err != nil {
			app.cleanup()
			return fmt.Errorf("failed to start maintenance job: %w", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("Server failed", "error", err)
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	if app.purger != nil {
		if err := app.purger.Stop(shutdownCtx); err != nil {
			app.logger.Warn("Maintenance job did not stop cleanly", "error", err)
		}
	}

	app.cleanup()
	app.logger.Info("Server shutdown completed")
	return runErr
}

func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
