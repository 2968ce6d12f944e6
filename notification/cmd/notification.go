package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/internal/config"
	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/internal/infra"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/server"
	"github.com/Alturino/gearshare/notification/internal/listener"
)

// RunNotificationService listens on the order event channel and serves /health and /metrics.
func RunNotificationService(c context.Context, cfg *config.Config) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppNotificationService).
		Str(log.KeyTag, "main RunNotificationService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	shutdownFuncs, err := otel.InitOtelSdk(logger.WithContext(c), cfg.Otel, constants.AppNotificationService)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache, err := infra.NewCacheClient(logger.WithContext(c), cfg.Cache)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer cache.Close()
	logger.Info().Msg("initialized cache")

	logger = logger.With().
		Str(log.KeyProcess, "subscribing order events").
		Str(log.KeyChannel, constants.ChannelOrderEvents).
		Logger()
	logger.Info().Msg("subscribing order events")
	sub := cache.Subscribe(c, constants.ChannelOrderEvents)
	defer sub.Close()
	if _, err = sub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing order events with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed order events")

	var webhook *listener.Webhook
	if cfg.Notification.WebhookURL != "" {
		webhook = listener.NewWebhook(cfg.Notification.WebhookURL, cfg.Notification.Timeout)
		logger = logger.With().Str(log.KeyWebhookURL, cfg.Notification.WebhookURL).Logger()
	}
	go listener.NewListener(sub.Channel(), webhook).Start(logger.WithContext(c))

	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.WithoutCancel(c)) },
		Handler:      server.NewRouter(constants.AppNotificationService),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occurred while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown notification service")

	return nil
}
