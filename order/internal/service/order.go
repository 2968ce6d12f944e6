package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/gearshare/cart/pkg/aggregate"
	cartResponse "github.com/Alturino/gearshare/cart/pkg/response"
	"github.com/Alturino/gearshare/internal/auth"
	"github.com/Alturino/gearshare/internal/constants"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/validate"
	"github.com/Alturino/gearshare/order/internal/otel"
	"github.com/Alturino/gearshare/order/pkg/request"
	"github.com/Alturino/gearshare/order/pkg/response"
	"github.com/Alturino/gearshare/order/pkg/status"
	"github.com/Alturino/gearshare/pricing"
)

const (
	EventCreated   = "order.created"
	EventConfirmed = "order.confirmed"
	EventReceived  = "order.received"
	EventReturned  = "order.returned"
	EventCancelled = "order.cancelled"

	DefaultCustomerCancelReason = "cancelled by customer"
	DefaultAdminCancelReason    = "cancelled by admin"

	CancelledByUser  = "user"
	CancelledByAdmin = "admin"

	keyUserOrders  = "orders:user:%s"
	userOrdersTTL  = 10 * time.Minute
	uniqueViolated = "23505"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	now     func() time.Time
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	now func() time.Time,
) OrderService {
	if now == nil {
		now = time.Now
	}
	return OrderService{pool: pool, queries: queries, cache: cache, now: now}
}

// NewOrderNumber formats ORD-<unix millis>-<4 digits>. Collisions surface as ErrConflict on insert.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), 1000+rand.IntN(9000))
}

// CreateFromCart snapshots the priced cart into a pending order and empties the cart in the same transaction.
func (s OrderService) CreateFromCart(
	c context.Context,
	actor auth.Actor,
	param request.CreateOrder,
) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateFromCart").
		Str(log.KeyUserID, actor.UserID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	defer repository.Rollback(c, tx, logger, span)
	queries := s.queries.WithTx(tx)
	logger.Trace().Msg("initialized transaction")

	logger = logger.With().Str(log.KeyProcess, "locking cart lines").Logger()
	logger.Trace().Msg("locking cart lines")
	rows, err := queries.FindCartLinesByUserIDForUpdate(c, actor.UserID)
	if err != nil {
		err = fmt.Errorf("failed locking cart lines with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	if len(rows) == 0 {
		err = fmt.Errorf("%w: cart is empty", inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Trace().Int(log.KeyCartLineCount, len(rows)).Msg("locked cart lines")

	logger = logger.With().Str(log.KeyProcess, "pricing cart lines").Logger()
	now := s.now()
	total := decimal.Zero
	lines := make([]cartResponse.LineItem, 0, len(rows))
	for _, row := range rows {
		line := aggregate.Line(row, now)
		total = total.Add(line.LineTotal)
		lines = append(lines, line)
	}
	logger.Debug().Str("totalAmount", total.String()).Msg("priced cart lines")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Trace().Msg("inserting order")
	order, err := queries.CreateOrder(c, repository.CreateOrderParams{
		UserID:          actor.UserID,
		OrderNumber:     NewOrderNumber(now),
		CustomerName:    param.CustomerName,
		CustomerPhone:   param.CustomerPhone,
		DeliveryAddress: param.DeliveryAddress,
		Note:            param.Note,
		PaymentMethod:   param.PaymentMethod,
		TotalAmount:     repository.NumericFromDecimal(total),
		Status:          status.Pending.String(),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolated {
			err = fmt.Errorf("%w: order number already taken, retry checkout", inErrors.ErrConflict)
		} else {
			err = fmt.Errorf("failed inserting order with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyOrderNumber, order.OrderNumber).
		Logger()
	logger.Trace().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Trace().Msg("inserting order items")
	params := make([]repository.CreateOrderItemsParams, len(lines))
	for i, line := range lines {
		params[i] = orderItemParams(order.ID, int32(i), rows[i], line)
	}
	inserted, err := queries.CreateOrderItems(c, params)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Trace().Int64("inserted", inserted).Msg("inserted order items")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	if _, err = queries.DeleteCartLinesByUserID(c, actor.UserID); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding order items").Logger()
	items, err := queries.FindOrderItemsByOrderIDs(c, []uuid.UUID{order.ID})
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Msg("created order")

	s.afterTransition(logger.WithContext(c), actor, order, "", EventCreated)

	return response.Checkout{
		Order: order.Response(items),
		Cart:  aggregate.Build(nil, now),
	}, nil
}

func orderItemParams(
	orderID uuid.UUID,
	position int32,
	row repository.FindCartLinesByUserIDRow,
	line cartResponse.LineItem,
) repository.CreateOrderItemsParams {
	optionExtra := decimal.Zero
	if line.SelectedOption != nil {
		optionExtra = line.SelectedOption.ExtraPrice
	}
	return repository.CreateOrderItemsParams{
		OrderID:          orderID,
		Position:         position,
		ProductID:        row.ProductID,
		ProductName:      line.ProductName,
		ProductImage:     line.ProductImage,
		BasePrice:        repository.NumericFromDecimal(line.BasePrice),
		Quantity:         line.Quantity,
		OptionName:       row.OptionName,
		OptionExtraPrice: repository.NumericFromDecimal(optionExtra),
		ReturnDate:       row.ReturnDate,
		DailyRentalRate:  repository.NumericFromDecimal(line.DailyRentalRate),
		RentalDays:       int32(line.RentalDays),
		RentalExtra:      repository.NumericFromDecimal(line.RentalExtra),
		PerUnitTotal:     repository.NumericFromDecimal(line.PerUnitTotal),
		LineTotal:        repository.NumericFromDecimal(line.LineTotal),
	}
}

type guardFunc func(order repository.Order, current status.Status) error

type applyFunc func(
	c context.Context,
	queries *repository.Queries,
	order repository.Order,
) (repository.Order, error)

// transition locks the order row, checks guard and runs apply inside one transaction.
func (s OrderService) transition(
	c context.Context,
	orderID uuid.UUID,
	guard guardFunc,
	apply applyFunc,
) (before repository.Order, after repository.Order, err error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyOrderID, orderID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return before, after, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer repository.Rollback(c, tx, logger, trace.SpanFromContext(c))
	queries := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "locking order").Logger()
	logger.Trace().Msg("locking order")
	before, err = queries.FindOrderByIDForUpdate(c, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return before, after, fmt.Errorf("%w: order %s", inErrors.ErrNotFound, orderID)
	}
	if err != nil {
		return before, after, fmt.Errorf("failed locking order with error=%w", err)
	}
	current, err := status.Parse(before.Status)
	if err != nil {
		return before, after, fmt.Errorf("failed parsing order status with error=%w", err)
	}
	logger = logger.With().Str(log.KeyOrderStatus, current.String()).Logger()
	logger.Trace().Msg("locked order")

	if err = guard(before, current); err != nil {
		return before, after, err
	}

	logger = logger.With().Str(log.KeyProcess, "applying transition").Logger()
	after, err = apply(logger.WithContext(c), queries, before)
	if err != nil {
		return before, after, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	if err = tx.Commit(c); err != nil {
		return before, after, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	logger.Trace().Str("to", after.Status).Msg("applied transition")

	return before, after, nil
}

// afterTransition runs once the change is durable; failures here are logged and never undo the transition.
func (s OrderService) afterTransition(
	c context.Context,
	actor auth.Actor,
	order repository.Order,
	from string,
	eventType string,
) {
	c, span := otel.Tracer.Start(c, "OrderService afterTransition")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService afterTransition").
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyEvent, eventType).
		Logger()

	otel.TransitionCounter.Add(c, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", order.Status),
	))

	logger = logger.With().Str(log.KeyProcess, "invalidating order cache").Logger()
	cacheKey := fmt.Sprintf(keyUserOrders, order.UserID)
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		err = fmt.Errorf("failed invalidating order cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Str(log.KeyCacheKey, cacheKey).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "publishing order event").Logger()
	event := response.Event{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		ActorID:     actor.UserID,
		From:        from,
		To:          order.Status,
		OccurredAt:  s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		err = fmt.Errorf("failed marshaling order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	if err = s.cache.Publish(c, constants.ChannelOrderEvents, payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Debug().Msg("published order event")
}

// Confirm schedules delivery. Each rental item's calculated return date is the delivery date plus its
// rental days; the order-level date keeps the value of the last rental item by position.
func (s OrderService) Confirm(
	c context.Context,
	actor auth.Actor,
	orderID uuid.UUID,
	param request.ConfirmOrder,
) (response.Confirmation, error) {
	c, span := otel.Tracer.Start(c, "OrderService Confirm")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Confirm").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Confirmation{}, err
	}
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Confirmation{}, err
	}

	now := s.now()
	deliveryDate := pricing.AddDays(now, param.DeliveryDays)
	var calculatedReturnDate *time.Time

	guard := func(_ repository.Order, current status.Status) error {
		if current != status.Pending {
			return fmt.Errorf("%w: order already processed", inErrors.ErrInvalidState)
		}
		return nil
	}
	apply := func(
		c context.Context,
		queries *repository.Queries,
		order repository.Order,
	) (repository.Order, error) {
		items, err := queries.FindOrderItemsByOrderIDs(c, []uuid.UUID{order.ID})
		if err != nil {
			return order, fmt.Errorf("failed finding order items with error=%w", err)
		}
		for _, item := range items {
			returnDate := repository.TimeFromDate(item.ReturnDate)
			if returnDate == nil {
				continue
			}
			itemReturn := pricing.AddDays(deliveryDate, pricing.RentalDays(returnDate, now))
			err = queries.UpdateOrderItemCalculatedReturnDate(c, repository.UpdateOrderItemCalculatedReturnDateParams{
				ID:                   item.ID,
				CalculatedReturnDate: repository.TimestamptzFromTime(&itemReturn),
			})
			if err != nil {
				return order, fmt.Errorf("failed updating item return date with error=%w", err)
			}
			calculatedReturnDate = &itemReturn
		}
		confirmed, err := queries.ConfirmOrder(c, repository.ConfirmOrderParams{
			ID:                   order.ID,
			Status:               status.Confirmed.String(),
			DeliveryDate:         repository.TimestamptzFromTime(&deliveryDate),
			CalculatedReturnDate: repository.TimestamptzFromTime(calculatedReturnDate),
		})
		if err != nil {
			return order, fmt.Errorf("failed confirming order with error=%w", err)
		}
		return confirmed, nil
	}

	logger = logger.With().Str(log.KeyProcess, "confirming order").Logger()
	logger.Trace().Msg("confirming order")
	before, order, err := s.transition(logger.WithContext(c), orderID, guard, apply)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Confirmation{}, err
	}
	logger.Info().Msg("confirmed order")

	s.afterTransition(logger.WithContext(c), actor, order, before.Status, EventConfirmed)

	return response.Confirmation{
		OrderID:              order.ID,
		OrderNumber:          order.OrderNumber,
		DeliveryDate:         deliveryDate,
		CalculatedReturnDate: calculatedReturnDate,
	}, nil
}

func (s OrderService) MarkReceived(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService MarkReceived")
	defer span.End()

	order, err := s.ownerTransition(c, actor, orderID, status.Renting, EventReceived)
	if err != nil {
		inOtel.RecordError(err, span)
		return response.Order{}, err
	}
	return order, nil
}

func (s OrderService) MarkReturned(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService MarkReturned")
	defer span.End()

	order, err := s.ownerTransition(c, actor, orderID, status.Returned, EventReturned)
	if err != nil {
		inOtel.RecordError(err, span)
		return response.Order{}, err
	}
	return order, nil
}

func (s OrderService) ownerTransition(
	c context.Context,
	actor auth.Actor,
	orderID uuid.UUID,
	next status.Status,
	eventType string,
) (response.Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ownerTransition").
		Str(log.KeyOrderID, orderID.String()).
		Str("to", next.String()).
		Logger()

	guard := func(order repository.Order, current status.Status) error {
		if err := auth.RequireOwner(actor, order.UserID); err != nil {
			return err
		}
		return current.Transition(next)
	}
	apply := func(
		c context.Context,
		queries *repository.Queries,
		order repository.Order,
	) (repository.Order, error) {
		updated, err := queries.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
			ID:     order.ID,
			Status: next.String(),
		})
		if err != nil {
			return order, fmt.Errorf("failed updating order status with error=%w", err)
		}
		return updated, nil
	}

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	before, order, err := s.transition(logger.WithContext(c), orderID, guard, apply)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated order status")

	s.afterTransition(logger.WithContext(c), actor, order, before.Status, eventType)

	return s.withItems(c, order)
}

// Cancel checks ownership before state for non-admins, so a stranger always gets ErrForbidden.
func (s OrderService) Cancel(
	c context.Context,
	actor auth.Actor,
	orderID uuid.UUID,
	param request.CancelOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Cancel")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Cancel").
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyRole, actor.Role).
		Logger()

	cancelledBy, reason := CancelledByUser, DefaultCustomerCancelReason
	if actor.IsAdmin() {
		cancelledBy, reason = CancelledByAdmin, DefaultAdminCancelReason
	}
	if param.Reason != "" {
		reason = param.Reason
	}

	guard := func(order repository.Order, current status.Status) error {
		if !actor.IsAdmin() {
			if err := auth.RequireOwner(actor, order.UserID); err != nil {
				return err
			}
		}
		if current.IsTerminal() {
			return fmt.Errorf("%w: order is already %s", inErrors.ErrInvalidState, current)
		}
		if !actor.IsAdmin() && current != status.Pending {
			return fmt.Errorf(
				"%w: only pending orders may be cancelled by the customer",
				inErrors.ErrInvalidState,
			)
		}
		return current.Transition(status.Cancelled)
	}
	apply := func(
		c context.Context,
		queries *repository.Queries,
		order repository.Order,
	) (repository.Order, error) {
		now := s.now()
		cancelled, err := queries.CancelOrder(c, repository.CancelOrderParams{
			ID:                 order.ID,
			Status:             status.Cancelled.String(),
			CancelledBy:        repository.TextFromString(cancelledBy),
			CancellationReason: repository.TextFromString(reason),
			CancelledAt:        repository.TimestamptzFromTime(&now),
		})
		if err != nil {
			return order, fmt.Errorf("failed cancelling order with error=%w", err)
		}
		return cancelled, nil
	}

	logger = logger.With().Str(log.KeyProcess, "cancelling order").Logger()
	logger.Trace().Msg("cancelling order")
	before, order, err := s.transition(logger.WithContext(c), orderID, guard, apply)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("cancelled order")

	s.afterTransition(logger.WithContext(c), actor, order, before.Status, EventCancelled)

	return s.withItems(c, order)
}

func (s OrderService) withItems(c context.Context, order repository.Order) (response.Order, error) {
	items, err := s.queries.FindOrderItemsByOrderIDs(c, []uuid.UUID{order.ID})
	if err != nil {
		return response.Order{}, fmt.Errorf("failed finding order items with error=%w", err)
	}
	return order.Response(items), nil
}

func (s OrderService) FindByID(c context.Context, actor auth.Actor, orderID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindByID").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Trace().Msg("finding order")
	order, err := s.queries.FindOrderByID(c, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: order %s", inErrors.ErrNotFound, orderID)
	} else if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
	}
	if err == nil {
		err = auth.RequireOwnerOrAdmin(actor, order.UserID)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	res, err := s.withItems(c, order)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("found order")

	return res, nil
}

// ListAll returns every order newest first, joined with the owner's contact details.
func (s OrderService) ListAll(c context.Context, actor auth.Actor) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ListAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderService ListAll").Logger()

	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	rows, err := s.queries.FindOrders(c)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := s.queries.FindOrderItemsByOrderIDs(c, ids)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	grouped := repository.GroupOrderItems(items)

	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.Response(grouped[row.ID]))
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	return orders, nil
}

// ListMine serves from redis when possible; every transition on the user's orders drops the entry.
func (s OrderService) ListMine(c context.Context, actor auth.Actor) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ListMine")
	defer span.End()

	cacheKey := fmt.Sprintf(keyUserOrders, actor.UserID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ListMine").
		Str(log.KeyUserID, actor.UserID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders in cache").Logger()
	logger.Trace().Msg("finding orders in cache")
	cached, err := s.cache.Get(c, cacheKey).Bytes()
	switch {
	case err == nil:
		orders := []response.Order{}
		if err = json.Unmarshal(cached, &orders); err == nil {
			logger.Trace().Msg("found orders in cache")
			return orders, nil
		}
		logger.Warn().Err(err).Msg("failed decoding cached orders")
	case errors.Is(err, redis.Nil):
		logger.Trace().Msg("orders not cached")
	default:
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("failed reading order cache")
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	rows, err := s.queries.FindOrdersByUserID(c, actor.UserID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := s.queries.FindOrderItemsByOrderIDs(c, ids)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	grouped := repository.GroupOrderItems(items)
	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.Response(grouped[row.ID]))
	}

	logger = logger.With().Str(log.KeyProcess, "caching orders").Logger()
	payload, err := json.Marshal(orders)
	if err == nil {
		err = s.cache.Set(c, cacheKey, payload, userOrdersTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed caching orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	return orders, nil
}
