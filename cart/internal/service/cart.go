package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/gearshare/cart/internal/otel"
	"github.com/Alturino/gearshare/cart/pkg/aggregate"
	"github.com/Alturino/gearshare/cart/pkg/request"
	"github.com/Alturino/gearshare/cart/pkg/response"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/validate"
	"github.com/Alturino/gearshare/pricing"
)

// errLineExists reports that a concurrent request created the same line first.
var errLineExists = errors.New("cart line already exists")

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	now     func() time.Time
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	now func() time.Time,
) CartService {
	if now == nil {
		now = time.Now
	}
	return CartService{pool: pool, queries: queries, now: now}
}

func (s CartService) BuildCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService BuildCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService BuildCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "building cart").Logger()
	logger.Info().Msg("building cart")
	cart, err := aggregate.Load(logger.WithContext(c), s.queries, userID, s.now())
	if err != nil {
		err = fmt.Errorf("failed building cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLineCount, cart.LineCount).Msg("built cart")

	return cart, nil
}

// AddOrUpdate merges param into the line identified by (ProductID, option name).
// In add mode every call increments the quantity again, so retries are not idempotent.
func (s CartService) AddOrUpdate(
	c context.Context,
	userID uuid.UUID,
	param request.UpsertCartLine,
) (cart response.Cart, err error) {
	c, span := otel.Tracer.Start(c, "CartService AddOrUpdate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddOrUpdate").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	logger.Trace().Msg("validating param")
	if err = validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	returnDate, err := pricing.ParseReturnDate(param.ReturnDate)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	optionName := param.Option()
	logger = logger.With().
		Str("optionName", optionName).
		Str("mode", param.Mode()).
		Int32("quantity", param.Quantity).
		Logger()
	logger.Trace().Msg("validated param")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer repository.Rollback(c, tx, logger, span)
	queries := s.queries.WithTx(tx)
	logger.Trace().Msg("initialized transaction")

	logger = logger.With().Str(log.KeyProcess, "finding cart line").Logger()
	logger.Trace().Msg("finding cart line")
	key := repository.CartLineKeyParams{
		UserID:     userID,
		ProductID:  param.ProductID,
		OptionName: optionName,
	}
	line, err := queries.FindCartLineByKeyForUpdate(c, key)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("cart line not found")
		err = s.insertLine(logger.WithContext(c), queries, userID, param, optionName, returnDate)
		if errors.Is(err, errLineExists) {
			logger.Debug().Msg("cart line inserted concurrently, merging into it")
			line, err = queries.FindCartLineByKeyForUpdate(c, key)
			if err == nil {
				err = s.updateLine(logger.WithContext(c), queries, line, param, returnDate)
			}
		}
	} else if err == nil {
		logger = logger.With().Str("cartLineId", line.ID.String()).Logger()
		logger.Trace().Msg("found cart line")
		err = s.updateLine(logger.WithContext(c), queries, line, param, returnDate)
	} else {
		err = fmt.Errorf("failed finding cart line with error=%w", err)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "building cart").Logger()
	cart, err = aggregate.Load(logger.WithContext(c), queries, userID, s.now())
	if err != nil {
		err = fmt.Errorf("failed building cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLineCount, cart.LineCount).Msg("updated cart")

	return cart, nil
}

func (s CartService) insertLine(
	c context.Context,
	queries *repository.Queries,
	userID uuid.UUID,
	param request.UpsertCartLine,
	optionName string,
	returnDate *time.Time,
) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "inserting cart line").Logger()

	logger.Trace().Msg("finding product")
	if _, err := queries.FindProductByID(c, param.ProductID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: product %s", inErrors.ErrNotFound, param.ProductID)
		}
		return fmt.Errorf("failed finding product with error=%w", err)
	}

	extraPrice := decimal.Zero
	if optionName != "" && param.OptionExtraPrice() != nil {
		extraPrice = *param.OptionExtraPrice()
	}

	logger.Trace().Msg("inserting cart line")
	line, err := queries.CreateCartLine(c, repository.CreateCartLineParams{
		UserID:           userID,
		ProductID:        param.ProductID,
		Quantity:         max(param.Quantity, 1),
		OptionName:       repository.TextFromString(optionName),
		OptionExtraPrice: repository.NumericFromDecimal(extraPrice),
		ReturnDate:       repository.DateFromTime(returnDate),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return errLineExists
	}
	if err != nil {
		return fmt.Errorf("failed inserting cart line with error=%w", err)
	}
	logger.Debug().Any(log.KeyCartLine, line).Msg("inserted cart line")

	return nil
}

func (s CartService) updateLine(
	c context.Context,
	queries *repository.Queries,
	line repository.CartLine,
	param request.UpsertCartLine,
	returnDate *time.Time,
) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "updating cart line").Logger()

	quantity := line.Quantity
	switch param.Mode() {
	case request.ActionAdd:
		merged := int64(line.Quantity) + int64(max(param.Quantity, 1))
		if merged > request.MaxLineQuantity {
			return fmt.Errorf(
				"%w: quantity %d would exceed %d per line",
				inErrors.ErrValidation,
				merged,
				request.MaxLineQuantity,
			)
		}
		quantity = int32(merged)
	default:
		if param.Quantity > 0 {
			quantity = param.Quantity
		}
	}

	if extra := param.OptionExtraPrice(); line.OptionName.Valid && extra != nil {
		line.OptionExtraPrice = repository.NumericFromDecimal(*extra)
	}
	if returnDate != nil {
		line.ReturnDate = repository.DateFromTime(returnDate)
	}

	if quantity <= 0 {
		logger.Trace().Msg("deleting cart line")
		if err := queries.DeleteCartLineByID(c, line.ID); err != nil {
			return fmt.Errorf("failed deleting cart line with error=%w", err)
		}
		logger.Debug().Msg("deleted cart line")
		return nil
	}

	logger.Trace().Msg("updating cart line")
	updated, err := queries.UpdateCartLine(c, repository.UpdateCartLineParams{
		ID:               line.ID,
		Quantity:         quantity,
		OptionName:       line.OptionName,
		OptionExtraPrice: line.OptionExtraPrice,
		ReturnDate:       line.ReturnDate,
	})
	if err != nil {
		return fmt.Errorf("failed updating cart line with error=%w", err)
	}
	logger.Debug().Any(log.KeyCartLine, updated).Msg("updated cart line")

	return nil
}

func (s CartService) Remove(
	c context.Context,
	userID uuid.UUID,
	param request.RemoveCartLine,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Remove").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Str("optionName", param.Option()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting cart line").Logger()
	logger.Trace().Msg("deleting cart line")
	deleted, err := s.queries.DeleteCartLineByKey(c, repository.CartLineKeyParams{
		UserID:     userID,
		ProductID:  param.ProductID,
		OptionName: param.Option(),
	})
	if err != nil {
		err = fmt.Errorf("failed deleting cart line with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if deleted == 0 {
		err = fmt.Errorf("%w: cart line for product %s", inErrors.ErrNotFound, param.ProductID)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("deleted cart line")

	return s.BuildCart(logger.WithContext(c), userID)
}

// Clear succeeds on an already empty cart.
func (s CartService) Clear(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting cart lines").Logger()
	logger.Trace().Msg("deleting cart lines")
	deleted, err := s.queries.DeleteCartLinesByUserID(c, userID)
	if err != nil {
		err = fmt.Errorf("failed deleting cart lines with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int64("deleted", deleted).Msg("deleted cart lines")

	return s.BuildCart(logger.WithContext(c), userID)
}
