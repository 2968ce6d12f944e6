package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/gearshare/internal/auth"
	"github.com/Alturino/gearshare/internal/constants"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/testhelper"
	"github.com/Alturino/gearshare/order/pkg/request"
	"github.com/Alturino/gearshare/order/pkg/response"
	"github.com/Alturino/gearshare/order/pkg/status"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func addLine(t *testing.T, env *testhelper.Env, userID, productID uuid.UUID, quantity int32, returnDate *time.Time) {
	t.Helper()
	_, err := env.Queries.CreateCartLine(context.Background(), repository.CreateCartLineParams{
		UserID:           userID,
		ProductID:        productID,
		Quantity:         quantity,
		OptionExtraPrice: repository.NumericFromDecimal(decimal.Zero),
		ReturnDate:       repository.DateFromTime(returnDate),
	})
	require.NoError(t, err)
}

func TestNewOrderNumber(t *testing.T) {
	number := NewOrderNumber(fixedNow)
	prefix := fmt.Sprintf("ORD-%d-", fixedNow.UnixMilli())
	require.True(t, strings.HasPrefix(number, prefix))
	suffix := strings.TrimPrefix(number, prefix)
	assert.Len(t, suffix, 4)
	assert.GreaterOrEqual(t, suffix, "1000")
	assert.LessOrEqual(t, suffix, "9999")
}

func TestOrderLifecycle(t *testing.T) {
	env := testhelper.Setup(t)
	svc := NewOrderService(env.Pool, env.Queries, env.Cache, func() time.Time { return fixedNow })
	c := context.Background()

	owner := env.SeedUser(t, auth.RoleUser)
	stranger := env.SeedUser(t, auth.RoleUser)
	admin := env.SeedUser(t, auth.RoleAdmin)
	ownerActor := auth.Actor{UserID: owner.ID, Role: auth.RoleUser}
	strangerActor := auth.Actor{UserID: stranger.ID, Role: auth.RoleUser}
	adminActor := auth.Actor{UserID: admin.ID, Role: auth.RoleAdmin}

	tent := env.SeedProduct(t, "Tent", "2000000")
	stove := env.SeedProduct(t, "Stove", "500000")

	t.Run("empty cart cannot be checked out", func(t *testing.T) {
		_, err := svc.CreateFromCart(c, ownerActor, request.CreateOrder{})
		assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	})

	returnDate := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	addLine(t, env, owner.ID, stove.ID, 2, nil)
	addLine(t, env, owner.ID, tent.ID, 1, &returnDate)

	sub := env.Cache.Subscribe(c, constants.ChannelOrderEvents)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(c)
	require.NoError(t, err)

	checkout, err := svc.CreateFromCart(c, ownerActor, request.CreateOrder{
		CustomerName:    "Budi",
		CustomerPhone:   "0812",
		DeliveryAddress: "Jl. Merdeka 1",
		PaymentMethod:   "transfer",
	})
	require.NoError(t, err)
	order := checkout.Order

	t.Run("checkout snapshots the priced cart", func(t *testing.T) {
		assert.Equal(t, status.Pending.String(), order.Status)
		assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
		assert.True(t, decimal.NewFromInt(3_120_000).Equal(order.TotalAmount))
		require.Len(t, order.Items, 2)

		sum := decimal.Zero
		for _, item := range order.Items {
			sum = sum.Add(item.LineTotal)
		}
		assert.True(t, sum.Equal(order.TotalAmount))

		rental := order.Items[1]
		assert.Equal(t, tent.ID.String(), rental.ProductID)
		assert.Equal(t, 3, rental.RentalDays)
		assert.True(t, decimal.NewFromInt(40_000).Equal(rental.DailyRentalRate))
		assert.True(t, decimal.NewFromInt(2_120_000).Equal(rental.PerUnitTotal))

		assert.Empty(t, checkout.Cart.Items)
		lines, err := env.Queries.FindCartLinesByUserID(c, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("checkout publishes an event", func(t *testing.T) {
		receiveCtx, cancel := context.WithTimeout(c, 5*time.Second)
		defer cancel()
		msg, err := sub.ReceiveMessage(receiveCtx)
		require.NoError(t, err)

		event := response.Event{}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventCreated, event.Type)
		assert.Equal(t, order.ID, event.OrderID)
		assert.Equal(t, status.Pending.String(), event.To)
	})

	t.Run("later price changes do not touch the order", func(t *testing.T) {
		_, err := env.Queries.UpdateProduct(c, repository.UpdateProductParams{
			ID:    stove.ID,
			Price: repository.NumericFromDecimal(decimal.NewFromInt(1)),
		})
		require.NoError(t, err)

		found, err := svc.FindByID(c, ownerActor, order.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(3_120_000).Equal(found.TotalAmount))
	})

	t.Run("find by id is owner or admin", func(t *testing.T) {
		_, err := svc.FindByID(c, strangerActor, order.ID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		_, err = svc.FindByID(c, adminActor, order.ID)
		assert.NoError(t, err)
		_, err = svc.FindByID(c, adminActor, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("received before confirmation", func(t *testing.T) {
		_, err := svc.MarkReceived(c, ownerActor, order.ID)
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	})

	t.Run("confirm guards", func(t *testing.T) {
		_, err := svc.Confirm(c, ownerActor, order.ID, request.ConfirmOrder{DeliveryDays: 2})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		_, err = svc.Confirm(c, adminActor, order.ID, request.ConfirmOrder{DeliveryDays: 0})
		assert.ErrorIs(t, err, inErrors.ErrValidation)
	})

	t.Run("confirm computes dates", func(t *testing.T) {
		confirmation, err := svc.Confirm(c, adminActor, order.ID, request.ConfirmOrder{DeliveryDays: 2})
		require.NoError(t, err)
		assert.True(t, fixedNow.Add(48*time.Hour).Equal(confirmation.DeliveryDate))
		require.NotNil(t, confirmation.CalculatedReturnDate)
		assert.True(t, fixedNow.Add(5*24*time.Hour).Equal(*confirmation.CalculatedReturnDate))

		_, err = svc.Confirm(c, adminActor, order.ID, request.ConfirmOrder{DeliveryDays: 2})
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	})

	t.Run("cancel by stranger is forbidden", func(t *testing.T) {
		_, err := svc.Cancel(c, strangerActor, order.ID, request.CancelOrder{})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("received by stranger is forbidden", func(t *testing.T) {
		_, err := svc.MarkReceived(c, strangerActor, order.ID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("owner receives", func(t *testing.T) {
		received, err := svc.MarkReceived(c, ownerActor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status.Renting.String(), received.Status)
	})

	t.Run("owner cannot cancel a renting order", func(t *testing.T) {
		_, err := svc.Cancel(c, ownerActor, order.ID, request.CancelOrder{})
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	})

	t.Run("my orders are cached and invalidated", func(t *testing.T) {
		orders, err := svc.ListMine(c, ownerActor)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, status.Renting.String(), orders[0].Status)

		exists, err := env.Cache.Exists(c, fmt.Sprintf(keyUserOrders, owner.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		cancelled, err := svc.Cancel(c, adminActor, order.ID, request.CancelOrder{Reason: "damaged"})
		require.NoError(t, err)
		assert.Equal(t, status.Cancelled.String(), cancelled.Status)
		assert.Equal(t, CancelledByAdmin, cancelled.CancelledBy)
		assert.Equal(t, "damaged", cancelled.CancellationReason)
		assert.NotNil(t, cancelled.CancelledAt)

		orders, err = svc.ListMine(c, ownerActor)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, status.Cancelled.String(), orders[0].Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		_, err := svc.Cancel(c, adminActor, order.ID, request.CancelOrder{})
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	})

	t.Run("customer cancel uses default reason", func(t *testing.T) {
		addLine(t, env, owner.ID, stove.ID, 1, nil)
		second, err := svc.CreateFromCart(c, ownerActor, request.CreateOrder{})
		require.NoError(t, err)

		cancelled, err := svc.Cancel(c, ownerActor, second.Order.ID, request.CancelOrder{})
		require.NoError(t, err)
		assert.Equal(t, CancelledByUser, cancelled.CancelledBy)
		assert.Equal(t, DefaultCustomerCancelReason, cancelled.CancellationReason)
	})

	t.Run("rental is returned by the owner", func(t *testing.T) {
		returnDate := fixedNow.Add(2 * 24 * time.Hour)
		addLine(t, env, owner.ID, tent.ID, 1, &returnDate)
		checkout, err := svc.CreateFromCart(c, ownerActor, request.CreateOrder{})
		require.NoError(t, err)
		orderID := checkout.Order.ID

		_, err = svc.MarkReturned(c, ownerActor, orderID)
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)

		_, err = svc.Confirm(c, adminActor, orderID, request.ConfirmOrder{DeliveryDays: 200_000})
		assert.ErrorIs(t, err, inErrors.ErrValidation)

		confirmation, err := svc.Confirm(c, adminActor, orderID, request.ConfirmOrder{DeliveryDays: 3650})
		require.NoError(t, err)
		deliveryDate := fixedNow.AddDate(0, 0, 3650)
		assert.True(t, deliveryDate.Equal(confirmation.DeliveryDate))
		require.NotNil(t, confirmation.CalculatedReturnDate)
		assert.True(t, deliveryDate.AddDate(0, 0, 2).Equal(*confirmation.CalculatedReturnDate))

		_, err = svc.MarkReturned(c, ownerActor, orderID)
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)

		_, err = svc.MarkReceived(c, ownerActor, orderID)
		require.NoError(t, err)

		_, err = svc.MarkReturned(c, strangerActor, orderID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		_, err = svc.MarkReturned(c, adminActor, orderID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)

		returned, err := svc.MarkReturned(c, ownerActor, orderID)
		require.NoError(t, err)
		assert.Equal(t, status.Returned.String(), returned.Status)

		_, err = svc.MarkReturned(c, ownerActor, orderID)
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
		_, err = svc.Cancel(c, adminActor, orderID, request.CancelOrder{})
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)
		_, err = svc.Cancel(c, ownerActor, orderID, request.CancelOrder{})
		assert.ErrorIs(t, err, inErrors.ErrInvalidState)

		found, err := svc.FindByID(c, ownerActor, orderID)
		require.NoError(t, err)
		assert.Equal(t, status.Returned.String(), found.Status)
	})

	t.Run("list all is admin only and newest first", func(t *testing.T) {
		_, err := svc.ListAll(c, ownerActor)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)

		orders, err := svc.ListAll(c, adminActor)
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.False(t, orders[0].CreatedAt.Before(orders[1].CreatedAt))
		assert.False(t, orders[1].CreatedAt.Before(orders[2].CreatedAt))
		require.NotNil(t, orders[0].User)
		assert.Equal(t, owner.Email, orders[0].User.Email)
	})
}
