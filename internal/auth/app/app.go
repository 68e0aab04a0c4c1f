package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/sellersoft/shopauth/internal/auth/http"
	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/internal/auth/store/drivers/redis"
	"github.com/sellersoft/shopauth/internal/auth/store/drivers/sqlite"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the token service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	revoked store.RevokedTokens
	codec   *jwtx.HS256Codec

	tokenService        *service.TokenService
	sessionService      *service.SessionService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "shopauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	key, err := jwtx.KeyFromSecret(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	codec, err := jwtx.NewHS256Codec(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRevocation(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("token service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		// The server is already down; still run the full teardown so the
		// housekeeping worker stops and the store closes.
		if shutdownErr := app.Shutdown(); shutdownErr != nil {
			app.logger.Error("teardown after server failure", "error", shutdownErr)
		}
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down token service...")

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

	app.logger.Info("token service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocation picks the revocation backend. sqlite shares the main
// database; redis keeps the set visible across replicas and reclaims
// expired entries with native TTLs.
func (app *Application) initRevocation() error {
	switch app.cfg.RevocationBackend {
	case "", "sqlite":
		app.revoked = app.db.RevokedTokens()
		app.logger.Info("revocation backend: sqlite")
		return nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
		}

		app.revoked = redis.NewRevokedTokens(client)
		app.logger.Info("revocation backend: redis", "addr", app.cfg.RedisAddr)
		return nil

	default:
		return fmt.Errorf("unknown revocation backend %q", app.cfg.RevocationBackend)
	}
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Revoked:    app.revoked,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.sessionService = &service.SessionService{
		Store:  app.db,
		Tokens: app.tokenService,
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.revoked,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.MintToken, app.db, app.logger)

	router.TokenService = app.tokenService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
