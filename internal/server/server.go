// Package server boots the HTTP process shared by every service command.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/gearshare/internal/auth"
	"github.com/Alturino/gearshare/internal/config"
	inHttp "github.com/Alturino/gearshare/internal/http"
	"github.com/Alturino/gearshare/internal/infra"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/middleware"
	"github.com/Alturino/gearshare/internal/otel"
)

const shutdownTimeout = 15 * time.Second

type Dependencies struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Cache    *redis.Client
	Verifier *auth.Verifier
	Now      func() time.Time
}

type AttachFunc func(c context.Context, router *mux.Router, deps Dependencies)

// NewRouter installs the middleware chain plus /health and /metrics.
func NewRouter(appName string) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(appName),
		middleware.Logging,
		middleware.Metrics,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteSuccessResponse(r.Context(), w, http.StatusOK, "healthy", map[string]interface{}{
			"app": appName,
		})
	}).Methods(http.MethodGet)
	return router
}

// OpenDatabase connects to postgres and applies pending migrations.
func OpenDatabase(c context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := infra.NewDatabaseClient(c, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err = infra.Migrate(c, pool, cfg.Database); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Run blocks until c is cancelled, then drains the server and releases every resource it opened.
func Run(c context.Context, cfg *config.Config, appName string, attaches ...AttachFunc) (err error) {
	c, span := otel.Tracer.Start(c, "server Run")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, appName).
		Str(log.KeyTag, "server Run").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	otelShutdowns, err := otel.InitOtelSdk(logger.WithContext(c), cfg.Otel, appName)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := otel.ShutdownOtel(shutdownCtx, otelShutdowns); shutdownErr != nil {
			shutdownErr = fmt.Errorf("failed shutting down otel with error=%w", shutdownErr)
			logger.Error().Err(shutdownErr).Msg(shutdownErr.Error())
			err = errors.Join(err, shutdownErr)
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	pool, err := OpenDatabase(logger.WithContext(c), cfg)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		pool.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache, err := infra.NewCacheClient(logger.WithContext(c), cfg.Cache)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		if closeErr := cache.Close(); closeErr != nil {
			closeErr = fmt.Errorf("failed shutting down cache with error=%w", closeErr)
			logger.Error().Err(closeErr).Msg(closeErr.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := NewRouter(appName)
	deps := Dependencies{
		Config:   cfg,
		Pool:     pool,
		Cache:    cache,
		Verifier: auth.NewVerifier(cfg.Application.SecretKey, cfg.Application.TokenTTL),
		Now:      time.Now,
	}
	for _, attach := range attaches {
		attach(logger.WithContext(c), router, deps)
	}
	logger.Info().Msg("initialized router")

	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.WithoutCancel(c)) },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("error=%w occurred while server is running", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		return err
	case <-c.Done():
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown http server")

	return nil
}
