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
	"github.com/Alturino/gearshare/user/internal/controller"
	"github.com/Alturino/gearshare/user/internal/service"
)

func AttachUserService(c context.Context, router *mux.Router, deps server.Dependencies) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachUserService").
		Str(log.KeyProcess, "initializing user service").
		Logger()

	logger.Info().Msg("initializing user service")
	userService := service.NewUserService(repository.New(deps.Pool), deps.Verifier)
	controller.AttachUserController(router, userService, deps.Verifier)
	logger.Info().Msg("initialized user service")
}

func RunUserService(c context.Context, cfg *config.Config) error {
	return server.Run(c, cfg, constants.AppUserService, AttachUserService)
}

// PromoteAdmin grants the admin role without an authenticated actor, used to bootstrap the first admin.
func PromoteAdmin(c context.Context, cfg *config.Config, email string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main PromoteAdmin").
		Str(log.KeyEmail, email).
		Logger()

	pool, err := server.OpenDatabase(c, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	userService := service.NewUserService(repository.New(pool), nil)
	user, err := userService.PromoteAdmin(logger.WithContext(c), email)
	if err != nil {
		return err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("promoted user to admin")
	return nil
}
