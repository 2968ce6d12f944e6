package auth

import (
	"context"
)

type claimsKey struct{}

func AttachClaims(c context.Context, claims Claims) context.Context {
	return context.WithValue(c, claimsKey{}, claims)
}

func ClaimsFromContext(c context.Context) (Claims, bool) {
	claims, ok := c.Value(claimsKey{}).(Claims)
	return claims, ok
}

// ActorFromContext fails with ErrUnauthenticated when no verified claims were attached.
func ActorFromContext(c context.Context) (Actor, error) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return Actor{}, errUnauthenticated
	}
	return claims.Actor()
}

// OptionalActorFromContext returns nil for anonymous requests.
func OptionalActorFromContext(c context.Context) *Actor {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return nil
	}
	actor, err := claims.Actor()
	if err != nil {
		return nil
	}
	return &actor
}
