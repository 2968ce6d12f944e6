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
	"github.com/Alturino/gearshare/internal/validate"
	"github.com/Alturino/gearshare/product/internal/otel"
	"github.com/Alturino/gearshare/product/pkg/request"
	"github.com/Alturino/gearshare/product/pkg/response"
)

type Service interface {
	Create(c context.Context, actor auth.Actor, param request.Product) (response.Product, error)
	List(c context.Context) ([]response.Product, error)
	FindByID(c context.Context, id uuid.UUID, viewer *auth.Actor) (response.ProductDetail, error)
	Update(c context.Context, actor auth.Actor, id uuid.UUID, param request.UpdateProduct) (response.Product, error)
	Delete(c context.Context, actor auth.Actor, id uuid.UUID) error
	ToggleLike(c context.Context, actor auth.Actor, productID uuid.UUID) (response.ToggleLike, error)
	Favorites(c context.Context, actor auth.Actor) ([]response.Product, error)
}

type ProductController struct {
	service Service
}

func AttachProductController(mux *mux.Router, service Service, verifier *auth.Verifier) {
	controller := ProductController{service: service}
	authed := middleware.Auth(verifier)
	optional := middleware.OptionalAuth(verifier)

	router := mux.PathPrefix("/products").Subrouter()
	router.HandleFunc("", controller.List).Methods(http.MethodGet)
	router.Handle("", authed(http.HandlerFunc(controller.Create))).Methods(http.MethodPost)
	router.Handle("/{productId}", optional(http.HandlerFunc(controller.FindByID))).Methods(http.MethodGet)
	router.Handle("/{productId}", authed(http.HandlerFunc(controller.Update))).Methods(http.MethodPut)
	router.Handle("/{productId}", authed(http.HandlerFunc(controller.Delete))).Methods(http.MethodDelete)
	router.Handle("/{productId}/like", authed(http.HandlerFunc(controller.ToggleLike))).Methods(http.MethodPut)

	favorites := mux.PathPrefix("/favorites").Subrouter()
	favorites.Use(authed)
	favorites.HandleFunc("", controller.Favorites).Methods(http.MethodGet)
	favorites.HandleFunc("/toggle", controller.ToggleFavorite).Methods(http.MethodPost)
}

func fail(c context.Context, w http.ResponseWriter, span trace.Span, logger zerolog.Logger, err error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteErrorResponse(c, w, err)
}

func (p ProductController) Create(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Create")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController Create").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.Product{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product").Str("name", reqBody.Name).Logger()
	logger.Info().Msg("inserting product")
	product, err := p.service.Create(logger.WithContext(c), actor, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed inserting product with error=%w", err))
		return
	}
	logger.Info().Msg("inserted product")

	inHttp.WriteSuccessResponse(c, w, http.StatusCreated, "product created", map[string]interface{}{
		"product": product,
	})
}

func (p ProductController) List(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController List")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController List").Logger()

	products, err := p.service.List(logger.WithContext(c))
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding products with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "products found", map[string]interface{}{
		"products": products,
	})
}

func (p ProductController) FindByID(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindByID")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController FindByID").Logger()

	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productID.String()).Logger()

	detail, err := p.service.FindByID(logger.WithContext(c), productID, auth.OptionalActorFromContext(c))
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding product with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "product found", detail)
}

func (p ProductController) Update(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Update")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController Update").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productID.String()).Logger()

	reqBody := request.UpdateProduct{}
	if err = inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Info().Msg("updating product")
	product, err := p.service.Update(logger.WithContext(c), actor, productID, reqBody)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed updating product with error=%w", err))
		return
	}
	logger.Info().Msg("updated product")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "product updated", map[string]interface{}{
		"product": product,
	})
}

func (p ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Delete")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController Delete").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productID.String()).Str(log.KeyProcess, "deleting product").Logger()

	logger.Info().Msg("deleting product")
	if err = p.service.Delete(logger.WithContext(c), actor, productID); err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed deleting product with error=%w", err))
		return
	}
	logger.Info().Msg("deleted product")

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "product deleted", nil)
}

func (p ProductController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ToggleLike")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController ToggleLike").Logger()

	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	p.toggle(c, w, span, logger, productID)
}

func (p ProductController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ToggleFavorite")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController ToggleFavorite").Logger()

	reqBody := request.ToggleFavorite{}
	if err := inHttp.DecodeJSON(r, &reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}
	if err := validate.Struct(c, reqBody); err != nil {
		fail(c, w, span, logger, err)
		return
	}
	p.toggle(c, w, span, logger, reqBody.ProductID)
}

func (p ProductController) toggle(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	productID uuid.UUID,
) {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().
		Str(log.KeyProductID, productID.String()).
		Str(log.KeyProcess, "toggling like").
		Logger()

	toggled, err := p.service.ToggleLike(logger.WithContext(c), actor, productID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed toggling like with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "like toggled", toggled)
}

func (p ProductController) Favorites(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Favorites")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController Favorites").Logger()

	actor, err := auth.ActorFromContext(c)
	if err != nil {
		fail(c, w, span, logger, err)
		return
	}

	products, err := p.service.Favorites(logger.WithContext(c), actor)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding favorites with error=%w", err))
		return
	}

	inHttp.WriteSuccessResponse(c, w, http.StatusOK, "favorites found", map[string]interface{}{
		"products": products,
	})
}
