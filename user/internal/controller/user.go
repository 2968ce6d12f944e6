package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/gearshare/internal/auth"
	inHttp "github.com/Alturino/gearshare/internal/http"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/middleware"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/user/internal/otel"
	"github.com/Alturino/gearshare/user/pkg/request"
	"github.com/Alturino/gearshare/user/pkg/response"
)

type Service interface {
	Register(c context.Context, param request.Register) (response.User, error)
	Login(c context.Context, param request.LoginRequest) (response.Login, error)
	SetAdmin(c context.Context, actor auth.Actor, param request.SetAdmin) (response.User, error)
	ListUsers(c context.Context, actor auth.Actor) ([]response.User, error)
	UpdateUser(c context.Context, actor auth.Actor, id uuid.UUID, param request.UpdateUser) (response.User, error)
	DeleteUser(c context.Context, actor auth.Actor, id uuid.UUID) error
}

type UserController struct {
	service Service
}

func AttachUserController(mux *mux.Router, service Service, verifier *auth.Verifier) {
	controller := UserController{service: service}
	authed := middleware.Auth(verifier)

	router := mux.PathPrefix("/users").Subrouter()
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.Handle("", authed(http.HandlerFunc(controller.ListUsers))).Methods(http.MethodGet)
	router.Handle("/set-admin", authed(http.HandlerFunc(controller.SetAdmin))).Methods(http.MethodPatch)
	router.Handle("/{userId}", authed(http.HandlerFunc(controller.UpdateUser))).Methods(http.MethodPatch)
	router.Handle("/{userId}", authed(http.HandlerFunc(controller.DeleteUser))).Methods(http.MethodDelete)
}

func fail(c context.Context, w http.ResponseWriter, span trace.Span, logger zerolog.Logger, err error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteErrorResponse(c, w, err)
}

func (u UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Register").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.Register{}
	if err := inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	user, err := u.service.Register(logger.WithContext(c), reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed registering user with error=%w", err))
		return
	}
	logger.Info().Msg("registered user")

	inHttp.WriteSuccessResponse(c, w, http.StatusCreated, "user registered", map[string]interface{}{
		"user": user,
	})
}

func (u UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Login").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.LoginRequest{}
	if err := inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	login, err := u.service.Login(logger.WithContext(c), reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed logging in with error=%w", err))
		return
	}
	logger.Info().Msg("logged in")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "login success", login)
}

func (u UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController ListUsers")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController ListUsers").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	users, err := u.service.ListUsers(logger.WithContext(c), actor)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding users with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "users found", map[string]interface{}{
		"users": users,
	})
}

func (u UserController) SetAdmin(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController SetAdmin")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController SetAdmin").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	reqBody := request.SetAdmin{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "promoting user").Str(log.KeyEmail, reqBody.Email).Logger()
	logger.Info().Msg("promoting user")
	user, err := u.service.SetAdmin(logger.WithContext(c), actor, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed promoting user with error=%w", err))
		return
	}
	logger.Info().Msg("promoted user")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "user promoted to admin", map[string]interface{}{
		"user": user,
	})
}

func (u UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController UpdateUser")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController UpdateUser").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	userID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userID.String()).Logger()

	reqBody := request.UpdateUser{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating user").Logger()
	logger.Info().Msg("updating user")
	user, err := u.service.UpdateUser(logger.WithContext(c), actor, userID, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed updating user with error=%w", err))
		return
	}
	logger.Info().Msg("updated user")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "user updated", map[string]interface{}{
		"user": user,
	})
}

func (u UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController DeleteUser")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController DeleteUser").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	userID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userID.String()).Str(log.KeyProcess, "deleting user").Logger()

	logger.Info().Msg("deleting user")
	if err = u.service.DeleteUser(logger.WithContext(c), actor, userID); err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed deleting user with error=%w", err))
		return
	}
	logger.Info().Msg("deleted user")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "user deleted", nil)
}
