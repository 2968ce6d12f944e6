package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/cart/internal/otel"
	"github.com/Alturino/gearshare/cart/pkg/request"
	"github.com/Alturino/gearshare/cart/pkg/response"
	"github.com/Alturino/gearshare/internal/auth"
	inHttp "github.com/Alturino/gearshare/internal/http"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/middleware"
	inOtel "github.com/Alturino/gearshare/internal/otel"
)

type Service interface {
	BuildCart(c context.Context, userID uuid.UUID) (response.Cart, error)
	AddOrUpdate(c context.Context, userID uuid.UUID, param request.UpsertCartLine) (response.Cart, error)
	Remove(c context.Context, userID uuid.UUID, param request.RemoveCartLine) (response.Cart, error)
	Clear(c context.Context, userID uuid.UUID) (response.Cart, error)
}

type CartController struct {
	service Service
}

func AttachCartController(mux *mux.Router, service Service, verifier *auth.Verifier) {
	controller := CartController{service: service}

	router := mux.PathPrefix("/cart").Subrouter()
	router.Use(middleware.Auth(verifier))
	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.UpsertCartLine).Methods(http.MethodPut)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.RemoveCartLine).Methods(http.MethodDelete)
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController FindCart").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting actor").Logger()
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, actor.UserID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "building cart").Logger()
	logger.Info().Msg("building cart")
	cart, err := t.service.BuildCart(logger.WithContext(c), actor.UserID)
	if err != nil {
		err = fmt.Errorf("failed building cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("built cart")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "cart found", map[string]interface{}{
		"cart": cart,
	})
}

func (t CartController) UpsertCartLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpsertCartLine")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController UpsertCartLine").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting actor").Logger()
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, actor.UserID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.UpsertCartLine{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Any(log.KeyRequestBody, reqBody).Logger()
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating cart").Logger()
	logger.Info().Msg("updating cart")
	cart, err := t.service.AddOrUpdate(logger.WithContext(c), actor.UserID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated cart")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "cart updated", map[string]interface{}{
		"cart": cart,
	})
}

func (t CartController) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveCartLine")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveCartLine").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting actor").Logger()
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, actor.UserID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.RemoveCartLine{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "removing cart line").
		Str(log.KeyProductID, reqBody.ProductID.String()).
		Logger()
	logger.Info().Msg("removing cart line")
	cart, err := t.service.Remove(logger.WithContext(c), actor.UserID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed removing cart line with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed cart line")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "cart line removed", map[string]interface{}{
		"cart": cart,
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController ClearCart").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting actor").Logger()
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, actor.UserID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	cart, err := t.service.Clear(logger.WithContext(c), actor.UserID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "cart cleared", map[string]interface{}{
		"cart": cart,
	})
}
