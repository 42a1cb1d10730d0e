package authz

import (
	"context"
	"errors"
	"slices"

	"github.com/tsampaio/courtly/internal/booking"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type actorContextKey struct{}

// ContextWithActor stores the authenticated actor in ctx.
func ContextWithActor(ctx context.Context, actor *booking.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the actor stored in ctx.
// It returns nil if ctx is nil, if no actor is stored, or if the stored value has a different type.
func ActorFromContext(ctx context.Context) *booking.Actor {
	if ctx == nil {
		return nil
	}

	actor, ok := ctx.Value(actorContextKey{}).(*booking.Actor)
	if !ok {
		return nil
	}

	return actor
}

// IsStaff reports whether the given actor has staff or admin privileges.
func IsStaff(actor *booking.Actor) bool {
	return actor != nil && (actor.Role == booking.RoleStaff || actor.Role == booking.RoleAdmin)
}

// RequireActor returns the actor in ctx or ErrUnauthenticated.
func RequireActor(ctx context.Context) (*booking.Actor, error) {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	return actor, nil
}

// RequireVenueAccess checks that the actor in ctx may operate on the given
// venue. Admins may touch any venue. Staff are limited to the venues they
// are assigned to. Members may book at any venue, subject to the engine's
// own gating rules.
func RequireVenueAccess(ctx context.Context, venueID int64) error {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return ErrUnauthenticated
	}

	if actor.Role == booking.RoleStaff {
		if !slices.Contains(actor.VenueIDs, venueID) {
			return ErrForbidden
		}
	}

	return nil
}

// RequireStaff checks that the actor in ctx is staff or admin.
func RequireStaff(ctx context.Context) error {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return ErrUnauthenticated
	}
	if !IsStaff(actor) {
		return ErrForbidden
	}
	return nil
}
