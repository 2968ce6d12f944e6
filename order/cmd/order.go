package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/internal/config"
	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/server"
	"github.com/Alturino/gearshare/order/internal/controller"
	"github.com/Alturino/gearshare/order/internal/service"
)

func AttachOrderService(c context.Context, router *mux.Router, deps server.Dependencies) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachOrderService").
		Str(log.KeyProcess, "initializing order service").
		Logger()

	logger.Info().Msg("initializing order service")
	orderService := service.NewOrderService(deps.Pool, repository.New(deps.Pool), deps.Cache, deps.Now)
	controller.AttachOrderController(router, orderService, deps.Verifier)
	logger.Info().Msg("initialized order service")
}

func RunOrderService(c context.Context, cfg *config.Config) error {
	return server.Run(c, cfg, constants.AppOrderService, AttachOrderService)
}
