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
	"github.com/Alturino/gearshare/product/internal/controller"
	"github.com/Alturino/gearshare/product/internal/service"
)

func AttachProductService(c context.Context, router *mux.Router, deps server.Dependencies) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachProductService").
		Str(log.KeyProcess, "initializing product service").
		Logger()

	logger.Info().Msg("initializing product service")
	productService := service.NewProductService(repository.New(deps.Pool), deps.Cache)
	controller.AttachProductController(router, productService, deps.Verifier)
	logger.Info().Msg("initialized product service")
}

func RunProductService(c context.Context, cfg *config.Config) error {
	return server.Run(c, cfg, constants.AppProductService, AttachProductService)
}
