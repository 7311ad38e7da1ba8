// Package server wires configuration, storage, services and transports into
// a runnable toodo server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/auth"
	"github.com/sameershelar/toodo/internal/server/config"
	gs "github.com/sameershelar/toodo/internal/server/grpc"
	"github.com/sameershelar/toodo/internal/server/metrics"
	"github.com/sameershelar/toodo/internal/server/repositories/refreshtokens"
	"github.com/sameershelar/toodo/internal/server/repositories/repomanager"
	"github.com/sameershelar/toodo/internal/server/rest"
	"github.com/sameershelar/toodo/internal/server/services"
)

const connectTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	rdb     *redis.Client
	metrics *metrics.Metrics
	auth    *services.AuthService
	todos   *services.TodoService
	purger  refreshtokens.Purger
}

// OpenDB opens and pings the PostgreSQL database at dsn.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Migrate applies all pending migrations to the configured database.
func Migrate(ctx context.Context, c *config.Config) error {
	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db)
}

// NewApp validates c and connects every backing store. Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, w)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	secret, err := c.JWTSecretBytes()
	if err != nil {
		return nil, err
	}
	signer, err := auth.NewSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}
	hasher, err := auth.NewPasswordHasher(c.PasswordHasher, c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, metrics: metrics.New()}

	var opts []repomanager.Option
	switch c.RefreshStore {
	case config.RefreshStoreRedis:
		app.rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := app.rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		opts = append(opts, repomanager.WithRefreshTokenStore(refreshtokens.NewRedisRepository(app.rdb, "")))
	default:
		app.purger = refreshtokens.NewPostgresRepository(db)
	}
	m := repomanager.NewPostgresRepositoryManager(opts...)

	if c.AutoMigrate {
		if err := m.RunMigrations(ctx, db); err != nil {
			app.Close()
			return nil, err
		}
	}

	app.auth = services.NewAuthService(db, m, hasher, signer, logger, services.WithOutcomeRecorder(app.metrics))
	app.todos = services.NewTodoService(db, m, logger)
	return app, nil
}

// Close releases database connections.
func (app *App) Close() error {
	var errs []error
	if app.rdb != nil {
		errs = append(errs, app.rdb.Close())
	}
	errs = append(errs, app.db.Close())
	return errors.Join(errs...)
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives, or a server fails. It returns the first server error.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	run := func(name string, f func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil {
				app.logger.Error(ctx, name+" stopped", "error", err)
				errOnce.Do(func() { firstErr = err })
				cancel()
			}
		}()
	}

	if app.config.HTTPAddr != "" {
		router := rest.NewRouter(rest.RouterConfig{
			Auth:     app.auth,
			Todos:    app.todos,
			Logger:   app.logger,
			Observer: app.metrics,
			Metrics:  app.metrics.Handler(),
			Health:   app.db,
		})
		run("http server", rest.NewServer(app.config.HTTPAddr, router, app.logger).Run)
	}
	if app.config.GRPCAddr != "" {
		run("grpc server", gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.auth, app.todos).Run)
	}
	if app.purger != nil && app.config.PurgeInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runPurger(ctx, app.purger, app.config.PurgeInterval, app.metrics.RecordPurged, app.logger.With("module", "purger"))
		}()
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
