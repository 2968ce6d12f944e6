package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/cart/internal/controller"
	"github.com/Alturino/gearshare/cart/internal/service"
	"github.com/Alturino/gearshare/internal/config"
	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/server"
)

func AttachCartService(c context.Context, router *mux.Router, deps server.Dependencies) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachCartService").
		Str(log.KeyProcess, "initializing cart service").
		Logger()

	logger.Info().Msg("initializing cart service")
	cartService := service.NewCartService(deps.Pool, repository.New(deps.Pool), deps.Now)
	controller.AttachCartController(router, cartService, deps.Verifier)
	logger.Info().Msg("initialized cart service")
}

func RunCartService(c context.Context, cfg *config.Config) error {
	return server.Run(c, cfg, constants.AppCartService, AttachCartService)
}
