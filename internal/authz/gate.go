// Package authz answers whether a staff member holds one of a set of roles in
// the store that owns a resource.
package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type membershipRepo interface {
	GetRole(ctx context.Context, userID, storeID uuid.UUID) (domain.Role, error)
}

type Gate struct {
	memberships membershipRepo
}

func NewGate(memberships membershipRepo) *Gate {
	return &Gate{memberships: memberships}
}

// Check returns nil when actorID is a member of storeID with one of allowed.
// A missing membership is reported as ErrPermissionDenied, never ErrNotFound.
func (g *Gate) Check(ctx context.Context, actorID, storeID uuid.UUID, allowed ...domain.Role) error {
	role, err := g.memberships.GetRole(ctx, actorID, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("Check: not a member of store %s: %w", storeID, domain.ErrPermissionDenied)
		}
		return fmt.Errorf("Check: %w", err)
	}

	if !slices.Contains(allowed, role) {
		return fmt.Errorf("Check: role %s not in %v: %w", role, allowed, domain.ErrPermissionDenied)
	}
	return nil
}
