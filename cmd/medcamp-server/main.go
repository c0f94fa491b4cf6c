package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/medcamp/medcamp/internal/config"
	"github.com/medcamp/medcamp/internal/domain/camp"
	"github.com/medcamp/medcamp/internal/domain/exam"
	"github.com/medcamp/medcamp/internal/domain/registration"
	"github.com/medcamp/medcamp/internal/domain/user"
	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/auth"
	"github.com/medcamp/medcamp/internal/platform/db"
	"github.com/medcamp/medcamp/internal/platform/metrics"
	"github.com/medcamp/medcamp/internal/platform/middleware"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "medcamp-server",
		Short:        "Medical camp registration API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(verifyDBCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, db.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		Schema:      cfg.DBSchema,
	})
}

// newRevocationStore uses Redis when REDIS_URL is set so that logouts are
// seen by every instance; otherwise revocations live in process memory.
func newRevocationStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (auth.RevocationStore, func(), error) {
	if cfg.RedisURL == "" {
		store := auth.NewMemoryRevocationStore(5 * time.Minute)
		logger.Info().Msg("token revocation: in-memory")
		return store, store.Close, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info().Str("addr", opts.Addr).Msg("token revocation: redis")
	return auth.NewRedisRevocationStore(client), func() { _ = client.Close() }, nil
}

// serverDeps is everything newEcho wires together. Pool may be nil, in which
// case /health/db is not mounted.
type serverDeps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       db.Beginner
	pool     *pgxpool.Pool
	revoked  auth.RevocationStore
	registry *prometheus.Registry
}

func newEcho(d serverDeps) *echo.Echo {
	cfg, logger := d.cfg, d.logger
	m := metrics.New(d.registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.Handler(logger, !cfg.IsProduction())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(m.Middleware())

	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	}
	e.GET("/health", health)
	if d.pool != nil {
		e.GET("/health/db", db.HealthHandler(d.pool))
	}
	e.GET("/metrics", m.Handler())

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	public := e.Group("/api")
	public.GET("/health", health)
	api := e.Group("/api", auth.RequireAuth(issuer, d.revoked))

	// Users and authentication
	userSvc := user.NewService(user.NewRepo(d.db), issuer, d.revoked, logger, m)
	loginLimit := middleware.LoginRateLimit(middleware.LoginLimitConfig{
		PerMinute: cfg.LoginRatePerMinute,
		Burst:     cfg.LoginRatePerMinute,
	})
	user.NewHandler(userSvc, loginLimit).RegisterRoutes(public, api)

	// Camps and dashboard
	campSvc := camp.NewService(camp.NewRepo(d.db), logger)
	camp.NewHandler(campSvc).RegisterRoutes(api)

	// Registrations
	regSvc := registration.NewService(registration.NewRepo(d.db), logger, m)
	registration.NewHandler(regSvc).RegisterRoutes(api)

	// Doctor exams
	examSvc := exam.NewService(exam.NewRepo(d.db), logger, m)
	exam.NewHandler(examSvc).RegisterRoutes(api)

	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		l := newLogger(nil)
		l.Error().Err(err).Msg("failed to load config")
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid config")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Int32("max_conns", cfg.DBMaxConns).Msg("connected to database")

	revoked, closeRevoked, err := newRevocationStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set up token revocation")
		return err
	}
	defer closeRevoked()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := newEcho(serverDeps{
		cfg:      cfg,
		logger:   logger,
		db:       pool,
		pool:     pool,
		revoked:  revoked,
		registry: registry,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
