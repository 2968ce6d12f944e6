package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/testhelper"
	"github.com/Alturino/gearshare/product/pkg/request"
)

func ptr[T any](v T) *T { return &v }

func TestProductService(t *testing.T) {
	env := testhelper.Setup(t)
	svc := NewProductService(env.Queries, env.Cache)
	c := context.Background()

	admin := env.SeedUser(t, auth.RoleAdmin)
	adminActor := auth.Actor{UserID: admin.ID, Role: auth.RoleAdmin}
	user := env.SeedUser(t, auth.RoleUser)
	userActor := auth.Actor{UserID: user.ID, Role: auth.RoleUser}

	tent, err := svc.Create(c, adminActor, request.Product{
		Name:     "tent",
		Price:    decimal.NewFromInt(2_000_000),
		Image:    "tent.png",
		Category: "camping",
	})
	require.NoError(t, err)

	t.Run("create is admin only", func(t *testing.T) {
		_, err := svc.Create(c, userActor, request.Product{Name: "x", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("create rejects negative price", func(t *testing.T) {
		_, err := svc.Create(c, adminActor, request.Product{Name: "x", Price: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, inErrors.ErrValidation)
	})

	t.Run("list newest first", func(t *testing.T) {
		stove, err := svc.Create(c, adminActor, request.Product{Name: "stove", Price: decimal.NewFromInt(500_000)})
		require.NoError(t, err)

		products, err := svc.List(c)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, stove.ID, products[0].ID)
		assert.Equal(t, tent.ID, products[1].ID)
	})

	t.Run("find by id caches the product", func(t *testing.T) {
		detail, err := svc.FindByID(c, tent.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "tent", detail.Product.Name)
		assert.False(t, detail.LikedByMe)

		exists, err := env.Cache.Exists(c, fmt.Sprintf(keyProduct, tent.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("find unknown product", func(t *testing.T) {
		_, err := svc.FindByID(c, uuid.New(), nil)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("toggle like flips and refreshes the count", func(t *testing.T) {
		liked, err := svc.ToggleLike(c, userActor, tent.ID)
		require.NoError(t, err)
		assert.True(t, liked.Liked)
		assert.Equal(t, int64(1), liked.LikeCount)

		detail, err := svc.FindByID(c, tent.ID, &userActor)
		require.NoError(t, err)
		assert.True(t, detail.LikedByMe)
		assert.Equal(t, int64(1), detail.LikeCount)

		anonymous, err := svc.FindByID(c, tent.ID, nil)
		require.NoError(t, err)
		assert.False(t, anonymous.LikedByMe)

		favorites, err := svc.Favorites(c, userActor)
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Equal(t, tent.ID, favorites[0].ID)

		unliked, err := svc.ToggleLike(c, userActor, tent.ID)
		require.NoError(t, err)
		assert.False(t, unliked.Liked)
		assert.Equal(t, int64(0), unliked.LikeCount)

		favorites, err = svc.Favorites(c, userActor)
		require.NoError(t, err)
		assert.Empty(t, favorites)
	})

	t.Run("concurrent toggles never fail", func(t *testing.T) {
		const workers = 6
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ToggleLike(c, adminActor, tent.ID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		liked, err := env.Queries.IsProductLikedByUser(c, repository.ProductLikeParams{
			ProductID: tent.ID,
			UserID:    admin.ID,
		})
		require.NoError(t, err)
		if liked {
			_, err = svc.ToggleLike(c, adminActor, tent.ID)
			require.NoError(t, err)
		}
		count, err := env.Queries.CountProductLikes(c, tent.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("toggle like on unknown product", func(t *testing.T) {
		_, err := svc.ToggleLike(c, userActor, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("update keeps omitted fields and invalidates cache", func(t *testing.T) {
		_, err := svc.FindByID(c, tent.ID, nil)
		require.NoError(t, err)

		updated, err := svc.Update(c, adminActor, tent.ID, request.UpdateProduct{
			Price: ptr(decimal.NewFromInt(2_500_000)),
		})
		require.NoError(t, err)
		assert.Equal(t, "tent", updated.Name)
		assert.Equal(t, "camping", updated.Category)
		assert.True(t, decimal.NewFromInt(2_500_000).Equal(updated.Price))

		detail, err := svc.FindByID(c, tent.ID, nil)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2_500_000).Equal(detail.Product.Price))
	})

	t.Run("update guards", func(t *testing.T) {
		_, err := svc.Update(c, userActor, tent.ID, request.UpdateProduct{Name: ptr("x")})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)

		_, err = svc.Update(c, adminActor, uuid.New(), request.UpdateProduct{Name: ptr("x")})
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(c, userActor, tent.ID), inErrors.ErrForbidden)
		require.NoError(t, svc.Delete(c, adminActor, tent.ID))
		assert.ErrorIs(t, svc.Delete(c, adminActor, tent.ID), inErrors.ErrNotFound)

		_, err := svc.FindByID(c, tent.ID, nil)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})
}
