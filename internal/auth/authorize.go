package auth

import (
	"fmt"

	"github.com/google/uuid"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var errUnauthenticated = fmt.Errorf("%w: missing credential", inErrors.ErrUnauthenticated)

type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func RequireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", inErrors.ErrForbidden)
	}
	return nil
}

func RequireOwner(actor Actor, ownerID uuid.UUID) error {
	if actor.UserID != ownerID {
		return fmt.Errorf("%w: not the owner", inErrors.ErrForbidden)
	}
	return nil
}

func RequireOwnerOrAdmin(actor Actor, ownerID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	return RequireOwner(actor, ownerID)
}
