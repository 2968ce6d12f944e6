package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/gearshare/cart/cmd"
	"github.com/Alturino/gearshare/internal/config"
	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/server"
	notificationCmd "github.com/Alturino/gearshare/notification/cmd"
	orderCmd "github.com/Alturino/gearshare/order/cmd"
	productCmd "github.com/Alturino/gearshare/product/cmd"
	userCmd "github.com/Alturino/gearshare/user/cmd"
)

type runFunc func(c context.Context, cfg *config.Config) error

func Start() {
	bootstrap := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str(log.KeyAppName, constants.AppGearshare).
		Str(log.KeyTag, "main Start").
		Logger()

	bootstrap.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	bootstrap.Info().Msg("added listener for SIGINT and SIGTERM")

	var (
		configName string
		cfg        *config.Config
	)
	rootCmd := &cobra.Command{
		Use:           constants.AppGearshare,
		Short:         "Gear rental marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Get(bootstrap.WithContext(cmd.Context()), configName)
			logger := log.Get(cfg.Application.LogPath, cfg.Application.Env).
				With().
				Str(log.KeyAppName, constants.AppGearshare).
				Str("command", cmd.Name()).
				Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}
	rootCmd.PersistentFlags().StringVar(&configName, "config", constants.AppGearshare, "config file name under ./env")

	service := func(use, short string, run runFunc) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), cfg)
			},
		}
	}

	rootCmd.AddCommand(
		service("api", "Run every http service in one process", runAPI),
		service("cart", "Run cart service", cartCmd.RunCartService),
		service("order", "Run order service", orderCmd.RunOrderService),
		service("product", "Run product service", productCmd.RunProductService),
		service("user", "Run user service", userCmd.RunUserService),
		service("notification", "Run order event listener", notificationCmd.RunNotificationService),
		service("migrate", "Apply database migrations", runMigrate),
		&cobra.Command{
			Use:   "promote-admin <email>",
			Short: "Grant the admin role to a registered user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return userCmd.PromoteAdmin(cmd.Context(), cfg, args[0])
			},
		},
	)

	if err := rootCmd.ExecuteContext(c); err != nil {
		bootstrap.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}

func runAPI(c context.Context, cfg *config.Config) error {
	return server.Run(
		c,
		cfg,
		constants.AppAPIService,
		userCmd.AttachUserService,
		productCmd.AttachProductService,
		cartCmd.AttachCartService,
		orderCmd.AttachOrderService,
	)
}

func runMigrate(c context.Context, cfg *config.Config) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "main runMigrate").Logger()

	logger.Info().Msg("applying migrations")
	pool, err := server.OpenDatabase(c, cfg)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	pool.Close()
	logger.Info().Msg("applied migrations")

	return nil
}
