package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/tsampaio/courtly/internal/booking"
)

func TestActorFromContextMissing(t *testing.T) {
	if got := ActorFromContext(nil); got != nil {
		t.Fatalf("expected nil actor for nil context, got %+v", got)
	}
	if got := ActorFromContext(context.Background()); got != nil {
		t.Fatalf("expected nil actor for empty context, got %+v", got)
	}
}

func TestActorFromContextRoundTrip(t *testing.T) {
	actor := &booking.Actor{UserID: 7, Role: booking.RoleMember}
	ctx := ContextWithActor(context.Background(), actor)
	if got := ActorFromContext(ctx); got != actor {
		t.Fatalf("expected stored actor, got %+v", got)
	}
}

func TestRequireVenueAccessUnauthenticated(t *testing.T) {
	err := RequireVenueAccess(context.Background(), 1)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireVenueAccessStaffForbidden(t *testing.T) {
	ctx := ContextWithActor(context.Background(), &booking.Actor{
		UserID:   10,
		Role:     booking.RoleStaff,
		VenueIDs: []int64{2, 3},
	})

	err := RequireVenueAccess(ctx, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireVenueAccessStaffAssigned(t *testing.T) {
	ctx := ContextWithActor(context.Background(), &booking.Actor{
		UserID:   10,
		Role:     booking.RoleStaff,
		VenueIDs: []int64{1},
	})

	if err := RequireVenueAccess(ctx, 1); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRequireVenueAccessAdminAnyVenue(t *testing.T) {
	ctx := ContextWithActor(context.Background(), &booking.Actor{
		UserID: 10,
		Role:   booking.RoleAdmin,
	})

	if err := RequireVenueAccess(ctx, 99); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRequireVenueAccessMemberAllowed(t *testing.T) {
	ctx := ContextWithActor(context.Background(), &booking.Actor{
		UserID: 10,
		Role:   booking.RoleMember,
	})

	if err := RequireVenueAccess(ctx, 5); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRequireStaff(t *testing.T) {
	if err := RequireStaff(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	memberCtx := ContextWithActor(context.Background(), &booking.Actor{UserID: 1, Role: booking.RoleMember})
	if err := RequireStaff(memberCtx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member, got %v", err)
	}

	staffCtx := ContextWithActor(context.Background(), &booking.Actor{UserID: 2, Role: booking.RoleStaff})
	if err := RequireStaff(staffCtx); err != nil {
		t.Fatalf("expected staff to pass, got %v", err)
	}
}
