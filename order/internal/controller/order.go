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
	"github.com/Alturino/gearshare/order/internal/otel"
	"github.com/Alturino/gearshare/order/pkg/request"
	"github.com/Alturino/gearshare/order/pkg/response"
)

type Service interface {
	CreateFromCart(c context.Context, actor auth.Actor, param request.CreateOrder) (response.Checkout, error)
	Confirm(c context.Context, actor auth.Actor, orderID uuid.UUID, param request.ConfirmOrder) (response.Confirmation, error)
	MarkReceived(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error)
	MarkReturned(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error)
	Cancel(c context.Context, actor auth.Actor, orderID uuid.UUID, param request.CancelOrder) (response.Order, error)
	FindByID(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error)
	ListAll(c context.Context, actor auth.Actor) ([]response.Order, error)
	ListMine(c context.Context, actor auth.Actor) ([]response.Order, error)
}

type OrderController struct {
	service Service
}

func AttachOrderController(mux *mux.Router, service Service, verifier *auth.Verifier) {
	controller := OrderController{service: service}

	router := mux.PathPrefix("/orders").Subrouter()
	router.Use(middleware.Auth(verifier))
	router.HandleFunc("", controller.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	router.HandleFunc("/mine", controller.FindMyOrders).Methods(http.MethodGet)
	router.HandleFunc("/{orderId}", controller.FindOrderByID).Methods(http.MethodGet)
	router.HandleFunc("/{orderId}/confirm", controller.ConfirmOrder).Methods(http.MethodPut)
	router.HandleFunc("/{orderId}/received", controller.MarkReceived).Methods(http.MethodPut)
	router.HandleFunc("/{orderId}/returned", controller.MarkReturned).Methods(http.MethodPut)
	router.HandleFunc("/{orderId}/cancel", controller.CancelOrder).Methods(http.MethodPut)
}

func fail(c context.Context, w http.ResponseWriter, span trace.Span, logger zerolog.Logger, err error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteErrorResponse(c, w, err)
}

// target resolves the caller and the {orderId} path value shared by every per-order route.
func target(c context.Context, r *http.Request) (auth.Actor, uuid.UUID, error) {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return auth.Actor{}, uuid.Nil, err
	}
	orderID, err := inHttp.PathUUID(r, "orderId")
	if err != nil {
		return auth.Actor{}, uuid.Nil, err
	}
	return actor, orderID, nil
}

func (t OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController CreateOrder").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, actor.UserID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.CreateOrder{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	checkout, err := t.service.CreateFromCart(logger.WithContext(c), actor, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed creating order with error=%w", err))
		return
	}
	logger.Info().Str(log.KeyOrderNumber, checkout.Order.OrderNumber).Msg("created order")

	inHttp.WriteSuccessResponse(c, w, http.StatusCreated, "order created", map[string]interface{}{
		"order": checkout.Order,
		"cart":  checkout.Cart,
	})
}

func (t OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrders").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	orders, err := t.service.ListAll(logger.WithContext(c), actor)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding orders with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "orders found", map[string]interface{}{
		"orders": orders,
	})
}

func (t OrderController) FindMyOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindMyOrders")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindMyOrders").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "finding my orders").
		Str(log.KeyUserID, actor.UserID.String()).
		Logger()
	orders, err := t.service.ListMine(logger.WithContext(c), actor)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding my orders with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "orders found", map[string]interface{}{
		"orders": orders,
	})
}

func (t OrderController) FindOrderByID(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderByID")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrderByID").Logger()

	actor, orderID, err := target(c, r)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderID.String()).Logger()

	order, err := t.service.FindByID(logger.WithContext(c), actor, orderID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding order with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "order found", map[string]interface{}{
		"order": order,
	})
}

func (t OrderController) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ConfirmOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController ConfirmOrder").Logger()

	actor, orderID, err := target(c, r)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.ConfirmOrder{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "confirming order").Logger()
	logger.Info().Msg("confirming order")
	confirmation, err := t.service.Confirm(logger.WithContext(c), actor, orderID, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed confirming order with error=%w", err))
		return
	}
	logger.Info().Msg("confirmed order")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "order confirmed", confirmation)
}

func (t OrderController) MarkReceived(w http.ResponseWriter, r *http.Request) {
	t.ownerTransition(w, r, "OrderController MarkReceived", "order received", t.service.MarkReceived)
}

func (t OrderController) MarkReturned(w http.ResponseWriter, r *http.Request) {
	t.ownerTransition(w, r, "OrderController MarkReturned", "order returned", t.service.MarkReturned)
}

func (t OrderController) ownerTransition(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	message string,
	transition func(context.Context, auth.Actor, uuid.UUID) (response.Order, error),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, tag).Logger()

	actor, orderID, err := target(c, r)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyProcess, "updating order status").
		Logger()

	logger.Info().Msg("updating order status")
	order, err := transition(logger.WithContext(c), actor, orderID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed updating order status with error=%w", err))
		return
	}
	logger.Info().Str(log.KeyOrderStatus, order.Status).Msg("updated order status")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, message, map[string]interface{}{
		"order": order,
	})
}

func (t OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CancelOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController CancelOrder").Logger()

	actor, orderID, err := target(c, r)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderID.String()).Logger()

	reqBody := request.CancelOrder{}
	if r.ContentLength != 0 {
		if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
			fail(c, w, span, logger, err)
			return
		}
	}

	logger = logger.With().Str(log.KeyProcess, "cancelling order").Logger()
	logger.Info().Msg("cancelling order")
	order, err := t.service.Cancel(logger.WithContext(c), actor, orderID, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed cancelling order with error=%w", err))
		return
	}
	logger.Info().Msg("cancelled order")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "order cancelled", map[string]interface{}{
		"order": order,
	})
}
