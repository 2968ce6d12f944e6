package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/testhelper"
	"github.com/Alturino/gearshare/user/pkg/request"
)

func ptr[T any](v T) *T { return &v }

func TestUserService(t *testing.T) {
	env := testhelper.Setup(t)
	verifier := auth.NewVerifier("secret", time.Hour)
	svc := NewUserService(env.Queries, verifier)
	svc.cost = bcrypt.MinCost
	c := context.Background()

	admin := env.SeedUser(t, auth.RoleAdmin)
	adminActor := auth.Actor{UserID: admin.ID, Role: auth.RoleAdmin}

	registered, err := svc.Register(c, request.Register{
		Username:    "budi",
		Email:       "budi@gearshare.test",
		Password:    "secret1",
		PhoneNumber: "0812",
	})
	require.NoError(t, err)
	userActor := auth.Actor{UserID: registered.ID, Role: auth.RoleUser}

	t.Run("register defaults to user role", func(t *testing.T) {
		assert.Equal(t, auth.RoleUser, registered.Role)
		assert.False(t, registered.Blocked)
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		_, err := svc.Register(c, request.Register{Username: "x", Email: "BUDI@gearshare.test", Password: "secret1"})
		assert.ErrorIs(t, err, inErrors.ErrConflict)
	})

	t.Run("register validates", func(t *testing.T) {
		_, err := svc.Register(c, request.Register{Username: "x", Email: "nope", Password: "1"})
		assert.ErrorIs(t, err, inErrors.ErrValidation)
	})

	t.Run("login issues a verifiable token", func(t *testing.T) {
		login, err := svc.Login(c, request.LoginRequest{Email: "budi@gearshare.test", Password: "secret1"})
		require.NoError(t, err)
		claims, err := verifier.Verify(c, login.Token)
		require.NoError(t, err)
		actor, err := claims.Actor()
		require.NoError(t, err)
		assert.Equal(t, registered.ID, actor.UserID)
		assert.Equal(t, auth.RoleUser, actor.Role)
	})

	t.Run("login rejects bad credentials", func(t *testing.T) {
		_, err := svc.Login(c, request.LoginRequest{Email: "budi@gearshare.test", Password: "wrong"})
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
		_, err = svc.Login(c, request.LoginRequest{Email: "ghost@gearshare.test", Password: "secret1"})
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
	})

	t.Run("admin operations require admin", func(t *testing.T) {
		_, err := svc.ListUsers(c, userActor)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		_, err = svc.SetAdmin(c, userActor, request.SetAdmin{Email: "budi@gearshare.test"})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		err = svc.DeleteUser(c, userActor, admin.ID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("list users", func(t *testing.T) {
		users, err := svc.ListUsers(c, adminActor)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("update and block user", func(t *testing.T) {
		updated, err := svc.UpdateUser(c, adminActor, registered.ID, request.UpdateUser{
			Username: ptr("budi2"),
			Password: ptr("secret2"),
			Blocked:  ptr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "budi2", updated.Username)
		assert.Equal(t, "0812", updated.PhoneNumber)
		assert.True(t, updated.Blocked)

		_, err = svc.Login(c, request.LoginRequest{Email: "budi@gearshare.test", Password: "secret2"})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("admins cannot be edited or deleted", func(t *testing.T) {
		_, err := svc.UpdateUser(c, adminActor, admin.ID, request.UpdateUser{Username: ptr("x")})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		assert.ErrorIs(t, svc.DeleteUser(c, adminActor, admin.ID), inErrors.ErrForbidden)
	})

	t.Run("promote admin", func(t *testing.T) {
		_, err := svc.PromoteAdmin(c, "ghost@gearshare.test")
		assert.ErrorIs(t, err, inErrors.ErrNotFound)

		other := env.SeedUser(t, auth.RoleUser)
		promoted, err := svc.SetAdmin(c, adminActor, request.SetAdmin{Email: other.Email})
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, promoted.Role)
	})

	t.Run("delete user", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(c, adminActor, registered.ID))
		assert.ErrorIs(t, svc.DeleteUser(c, adminActor, registered.ID), inErrors.ErrNotFound)
		assert.ErrorIs(t, svc.DeleteUser(c, adminActor, uuid.New()), inErrors.ErrNotFound)
	})
}
