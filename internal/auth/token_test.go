package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

func TestVerifier(t *testing.T) {
	c := context.Background()
	userID := uuid.New()
	verifier := NewVerifier("secret", 7*24*time.Hour)

	token, err := verifier.Issue(c, userID, RoleAdmin)
	require.NoError(t, err)

	t.Run("round trip keeps subject and role", func(t *testing.T) {
		claims, err := verifier.Verify(c, token)
		require.NoError(t, err)
		actor, err := claims.Actor()
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		assert.True(t, actor.IsAdmin())
	})

	t.Run("wrong secret is unauthenticated", func(t *testing.T) {
		other := NewVerifier("other-secret", time.Hour)
		_, err := other.Verify(c, token)
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
		assert.Nil(t, other.TryDecode(c, token))
	})

	t.Run("expired token is unauthenticated", func(t *testing.T) {
		expired := NewVerifier("secret", 7*24*time.Hour)
		expired.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		_, err := expired.Verify(c, token)
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := verifier.Verify(c, "")
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
		assert.Nil(t, verifier.TryDecode(c, ""))
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Nil(t, verifier.TryDecode(c, "not.a.token"))
	})

	t.Run("try decode valid token", func(t *testing.T) {
		claims := verifier.TryDecode(c, token)
		require.NotNil(t, claims)
		assert.Equal(t, userID.String(), claims.Subject)
	})
}

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	user := Actor{UserID: owner, Role: RoleUser}
	stranger := Actor{UserID: uuid.New(), Role: RoleUser}
	admin := Actor{UserID: uuid.New(), Role: RoleAdmin}

	assert.ErrorIs(t, RequireAdmin(user), inErrors.ErrForbidden)
	assert.NoError(t, RequireAdmin(admin))

	assert.NoError(t, RequireOwner(user, owner))
	assert.ErrorIs(t, RequireOwner(stranger, owner), inErrors.ErrForbidden)
	assert.ErrorIs(t, RequireOwner(admin, owner), inErrors.ErrForbidden)

	assert.NoError(t, RequireOwnerOrAdmin(user, owner))
	assert.NoError(t, RequireOwnerOrAdmin(admin, owner))
	assert.ErrorIs(t, RequireOwnerOrAdmin(stranger, owner), inErrors.ErrForbidden)
}

func TestActorFromContext(t *testing.T) {
	c := context.Background()
	_, err := ActorFromContext(c)
	assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
	assert.Nil(t, OptionalActorFromContext(c))

	userID := uuid.New()
	c = AttachClaims(c, Claims{Role: RoleUser})
	assert.Nil(t, OptionalActorFromContext(c))

	claims := Claims{Role: RoleUser}
	claims.Subject = userID.String()
	c = AttachClaims(context.Background(), claims)
	actor, err := ActorFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, userID, OptionalActorFromContext(c).UserID)
}
