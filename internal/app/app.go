// Package app assembles the fakeloc daemon: persistence, the location
// pipeline, the mock driver and the control API. main stays a thin shell
// around New and Run.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tsundberg/fakeloc/internal/config"
	"github.com/tsundberg/fakeloc/internal/geo"
	"github.com/tsundberg/fakeloc/internal/geocode"
	"github.com/tsundberg/fakeloc/internal/handler"
	"github.com/tsundberg/fakeloc/internal/middleware"
	"github.com/tsundberg/fakeloc/internal/mocker"
	"github.com/tsundberg/fakeloc/internal/notify"
	"github.com/tsundberg/fakeloc/internal/service"
	"github.com/tsundberg/fakeloc/internal/setting"
	"github.com/tsundberg/fakeloc/internal/statemachine"
	"github.com/tsundberg/fakeloc/internal/store"
	"github.com/tsundberg/fakeloc/migrations"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived component of the daemon.
type App struct {
	cfg config.Config
	log *slog.Logger

	pool      *pgxpool.Pool
	locations *store.LocationStream
	favorites *store.Favorites
	driver    *mocker.Driver
	srv       *http.Server
}

// New wires the daemon together. The pipeline is assembled bottom-up:
// store → monitor → machine → driver → service → HTTP. Nothing starts
// serving until Run.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	kv, err := a.openKV(ctx)
	if err != nil {
		return nil, err
	}

	a.locations = store.NewLocationStream(kv, log)
	a.favorites = store.NewFavorites(kv, log)

	monitor := setting.NewMonitor(setting.NewFileChecker(cfg.MockSettingPath), log)
	machine := statemachine.New(a.locations, monitor, log)

	notifier := notify.NewLogNotifier(log)
	a.driver = mocker.New(
		geo.NewLogProvider(log),
		notifier,
		machine,
		a.locations,
		log,
		mocker.WithInterval(cfg.KeepaliveInterval),
		mocker.WithStopURL("http://"+cfg.ListenAddr+"/v1/stop"),
	)

	var resolver geocode.Resolver = geocode.Nop{}
	if cfg.GeocoderURL != "" {
		resolver = geocode.NewClient(cfg.GeocoderURL)
	}

	faker := service.NewFaker(a.locations, a.favorites, machine, monitor, a.driver, notifier, resolver, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(chimiddleware.Recoverer)
	// Re-check the mock setting on every request so a flipped setting is
	// noticed at the next interaction, not only at the next poll.
	r.Use(middleware.NewSettingRefreshHandler(monitor.Refresh))
	handler.NewServer(faker).Register(r)

	a.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openKV selects the persistence backend: Postgres when DATABASE_URL is
// set (with migrations applied up front), the JSON file store otherwise.
func (a *App) openKV(ctx context.Context) (store.KV, error) {
	if a.cfg.DatabaseURL == "" {
		a.log.Info("using file store", "path", a.cfg.StorePath)
		return store.NewFileKV(a.cfg.StorePath), nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.New: create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.New: connect to database: %w", err)
	}

	// goose needs database/sql; borrow a connection view from the pool.
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.New: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.New: run migrations: %w", err)
	}
	if err := db.Close(); err != nil {
		a.log.Warn("closing migration connection", "error", err)
	}

	a.log.Info("database connection established")
	a.pool = pool
	return store.NewPGKV(pool), nil
}

// Run serves the control API until ctx is canceled, then shuts everything
// down in dependency order: HTTP first (no new commands), then the driver
// (disables mock mode), then the store writers (flush pending saves).
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server starting", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app.Run: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app.Run: shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()

	a.driver.Close()
	a.locations.Close()
	a.favorites.Close()
	if a.pool != nil {
		a.pool.Close()
	}

	a.log.Info("stopped")
	return err
}
