package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/validate"
	"github.com/Alturino/gearshare/product/internal/otel"
	"github.com/Alturino/gearshare/product/pkg/request"
	"github.com/Alturino/gearshare/product/pkg/response"
)

const (
	keyProduct = "products:%s"
	productTTL = time.Hour
)

type cachedProduct struct {
	Product   response.Product `json:"product"`
	LikeCount int64            `json:"likeCount"`
}

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(queries *repository.Queries, cache *redis.Client) ProductService {
	return ProductService{queries: queries, cache: cache}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf(keyProduct, id)
}

func (svc ProductService) invalidate(c context.Context, span trace.Span, id uuid.UUID) {
	logger := zerolog.Ctx(c).With().
		Str(log.KeyProcess, "invalidating product cache").
		Str(log.KeyCacheKey, productKey(id)).
		Logger()

	if err := svc.cache.Del(c, productKey(id)).Err(); err != nil {
		err = fmt.Errorf("failed invalidating product cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("invalidated product cache")
}

func (svc ProductService) Create(
	c context.Context,
	actor auth.Actor,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService Create")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Create").
		Str(log.KeyUserID, actor.UserID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Trace().Msg("inserting product")
	product, err := svc.queries.CreateProduct(c, repository.CreateProductParams{
		Name:     param.Name,
		Image:    param.Image,
		Price:    repository.NumericFromDecimal(param.Price),
		Category: param.Category,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")

	return product.Response(), nil
}

func (svc ProductService) List(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService List")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService List").
		Str(log.KeyProcess, "finding products").
		Logger()

	logger.Trace().Msg("finding products")
	products, err := svc.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(products)).Msg("found products")

	result := make([]response.Product, 0, len(products))
	for _, p := range products {
		result = append(result, p.Response())
	}
	return result, nil
}

// FindByID reports likedByMe only when viewer is set.
func (svc ProductService) FindByID(
	c context.Context,
	id uuid.UUID,
	viewer *auth.Actor,
) (response.ProductDetail, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindByID")
	defer span.End()

	cacheKey := productKey(id)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindByID").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	cached, err := svc.findCached(logger.WithContext(c), span, id)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductDetail{}, err
	}
	detail := response.ProductDetail{Product: cached.Product, LikeCount: cached.LikeCount}

	if viewer != nil {
		logger = logger.With().
			Str(log.KeyProcess, "finding viewer like").
			Str(log.KeyUserID, viewer.UserID.String()).
			Logger()
		detail.LikedByMe, err = svc.queries.IsProductLikedByUser(c, repository.ProductLikeParams{
			ProductID: id,
			UserID:    viewer.UserID,
		})
		if err != nil {
			err = fmt.Errorf("failed finding viewer like with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.ProductDetail{}, err
		}
	}
	logger.Info().Msg("found product")

	return detail, nil
}

func (svc ProductService) findCached(c context.Context, span trace.Span, id uuid.UUID) (cachedProduct, error) {
	cacheKey := productKey(id)
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "finding product in cache").Logger()

	logger.Trace().Msg("finding product in cache")
	payload, err := svc.cache.Get(c, cacheKey).Bytes()
	switch {
	case err == nil:
		cached := cachedProduct{}
		if err = json.Unmarshal(payload, &cached); err == nil {
			logger.Trace().Msg("found product in cache")
			return cached, nil
		}
		logger.Warn().Err(err).Msg("failed decoding cached product")
	case errors.Is(err, redis.Nil):
		logger.Trace().Msg("product not cached")
	default:
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("failed reading product cache")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	product, err := svc.queries.FindProductByID(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cachedProduct{}, fmt.Errorf("%w: product %s", inErrors.ErrNotFound, id)
		}
		return cachedProduct{}, fmt.Errorf("failed finding product with error=%w", err)
	}
	likes, err := svc.queries.CountProductLikes(c, id)
	if err != nil {
		return cachedProduct{}, fmt.Errorf("failed counting product likes with error=%w", err)
	}
	cached := cachedProduct{Product: product.Response(), LikeCount: likes}

	logger = logger.With().Str(log.KeyProcess, "caching product").Logger()
	payload, err = json.Marshal(cached)
	if err == nil {
		err = svc.cache.Set(c, cacheKey, payload, productTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed caching product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	}

	return cached, nil
}

func (svc ProductService) Update(
	c context.Context,
	actor auth.Actor,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService Update")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Update").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	params := repository.UpdateProductParams{
		ID:       id,
		Name:     repository.TextFromPtr(param.Name),
		Image:    repository.TextFromPtr(param.Image),
		Category: repository.TextFromPtr(param.Category),
	}
	if param.Price != nil {
		params.Price = repository.NumericFromDecimal(*param.Price)
	}

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Trace().Msg("updating product")
	product, err := svc.queries.UpdateProduct(c, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: product %s", inErrors.ErrNotFound, id)
		} else {
			err = fmt.Errorf("failed updating product with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	svc.invalidate(logger.WithContext(c), span, id)
	logger.Info().Msg("updated product")

	return product.Response(), nil
}

func (svc ProductService) Delete(c context.Context, actor auth.Actor, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Delete").
		Str(log.KeyProductID, id.String()).
		Logger()

	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting product").Logger()
	logger.Trace().Msg("deleting product")
	deleted, err := svc.queries.DeleteProductByID(c, id)
	if err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf("%w: product %s", inErrors.ErrNotFound, id)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	svc.invalidate(logger.WithContext(c), span, id)
	logger.Info().Msg("deleted product")

	return nil
}

func (svc ProductService) ToggleLike(
	c context.Context,
	actor auth.Actor,
	productID uuid.UUID,
) (response.ToggleLike, error) {
	c, span := otel.Tracer.Start(c, "ProductService ToggleLike")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService ToggleLike").
		Str(log.KeyProductID, productID.String()).
		Str(log.KeyUserID, actor.UserID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	product, err := svc.queries.FindProductByID(c, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: product %s", inErrors.ErrNotFound, productID)
		} else {
			err = fmt.Errorf("failed finding product with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ToggleLike{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "toggling like").Logger()
	like := repository.ProductLikeParams{ProductID: productID, UserID: actor.UserID}
	removed, err := svc.queries.DeleteProductLike(c, like)
	if err == nil && removed == 0 {
		_, err = svc.queries.InsertProductLike(c, like)
	}
	if err != nil {
		err = fmt.Errorf("failed toggling like with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ToggleLike{}, err
	}

	count, err := svc.queries.CountProductLikes(c, productID)
	if err != nil {
		err = fmt.Errorf("failed counting product likes with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ToggleLike{}, err
	}
	svc.invalidate(logger.WithContext(c), span, productID)
	logger.Info().Bool("liked", removed == 0).Int64("likeCount", count).Msg("toggled like")

	return response.ToggleLike{Product: product.Response(), LikeCount: count, Liked: removed == 0}, nil
}

func (svc ProductService) Favorites(c context.Context, actor auth.Actor) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService Favorites")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Favorites").
		Str(log.KeyUserID, actor.UserID.String()).
		Str(log.KeyProcess, "finding liked products").
		Logger()

	products, err := svc.queries.FindLikedProductsByUserID(c, actor.UserID)
	if err != nil {
		err = fmt.Errorf("failed finding liked products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(products)).Msg("found liked products")

	result := make([]response.Product, 0, len(products))
	for _, p := range products {
		result = append(result, p.Response())
	}
	return result, nil
}
