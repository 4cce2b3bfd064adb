package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/safescrow/dashboard/internal/devauth/http"
	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/internal/devauth/store"
	"github.com/safescrow/dashboard/internal/devauth/store/drivers/sqlite"
	"github.com/safescrow/dashboard/pkg/cryptox"
	"github.com/safescrow/dashboard/pkg/jwtx"
	"github.com/safescrow/dashboard/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the development backend together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.EdDSASigner
	verifier jwtx.Verifier
	hasher   *cryptox.Hasher

	authService         *service.AuthService
	escrowService       *service.EscrowService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "devauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.signer, app.verifier, err = InitAuthKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler without starting a listener.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the server and blocks until SIGINT/SIGTERM or a server error.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("devauth starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down devauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("devauth stopped")
	return nil
}

// Close releases resources for an Application that was never Run.
func (app *Application) Close() error {
	return app.db.Close()
}

func (app *Application) initDatabase() error {
	db, err := sqlite.Open(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if app.cfg.DatabaseFile == "" {
		app.logger.Info("using in-memory database")
	} else {
		app.logger.Info("database ready", "path", app.cfg.DatabaseFile)
	}
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:           app.db,
		Hasher:          app.hasher,
		Signer:          app.signer,
		Issuer:          app.cfg.Issuer,
		AccessTTL:       app.cfg.AccessTTL,
		RefreshTTL:      app.cfg.RefreshTTL,
		StartingBalance: app.cfg.StartingBalance * 100,
	}
	app.escrowService = &service.EscrowService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.EscrowService = app.escrowService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
