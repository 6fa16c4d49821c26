package auth

import (
	"context"
	"fmt"
)

// Owner is the ownership state of a resource. It is a closed sum type:
// either OwnedBy a specific identity or SystemOwned. Resources never have an
// implicit owner.
type Owner interface {
	isOwner()
}

// OwnedBy marks a resource owned by the identity with ID.
type OwnedBy struct {
	ID string
}

// SystemOwned marks a resource with no owning identity (announcements, seeded content).
type SystemOwned struct{}

func (OwnedBy) isOwner()     {}
func (SystemOwned) isOwner() {}

// OwnerFromColumn converts a nullable owner_id column into an Owner.
// NULL and the empty string both map to SystemOwned.
func OwnerFromColumn(id *string) Owner {
	if id == nil || *id == "" {
		return SystemOwned{}
	}
	return OwnedBy{ID: *id}
}

// OwnerColumn converts an Owner back into its nullable column value.
func OwnerColumn(owner Owner) *string {
	if o, ok := owner.(OwnedBy); ok && o.ID != "" {
		id := o.ID
		return &id
	}
	return nil
}

// Enforcer answers role based questions. casbin.IEnforcer satisfies it.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// Policy applies ownership checks before handlers read or mutate a resource.
// It holds no per-request state.
type Policy struct {
	enforcer Enforcer
}

// NewPolicy creates a Policy. A nil enforcer denies every role based decision.
func NewPolicy(enforcer Enforcer) *Policy {
	return &Policy{enforcer: enforcer}
}

// AssertAuthenticated returns the principal on ctx or ErrUnauthenticated.
func (p *Policy) AssertAuthenticated(ctx context.Context) (AuthenticatedPrincipal, error) {
	principal, ok := GetUserFromContext(ctx)
	if !ok || principal.ID == "" {
		return AuthenticatedPrincipal{}, ErrUnauthenticated
	}
	return principal, nil
}

// AssertOwner decides whether the principal on ctx may perform action on an
// object of objType with the given owner.
//
//   - OwnedBy: only that identity. Roles do not grant access to other users' content.
//   - SystemOwned: only principals whose role is granted action on objType.
//   - anything else (nil): denied.
func (p *Policy) AssertOwner(ctx context.Context, owner Owner, objType, action string) error {
	principal, err := p.AssertAuthenticated(ctx)
	if err != nil {
		return err
	}

	switch o := owner.(type) {
	case OwnedBy:
		if o.ID != "" && o.ID == principal.ID {
			return nil
		}
		return ErrForbidden
	case SystemOwned:
		return p.AssertRole(ctx, objType, action)
	default:
		return ErrForbidden
	}
}

// AssertRole checks the principal's role against the enforcer.
func (p *Policy) AssertRole(ctx context.Context, objType, action string) error {
	principal, err := p.AssertAuthenticated(ctx)
	if err != nil {
		return err
	}
	if p.enforcer == nil {
		return ErrForbidden
	}

	allowed, err := p.enforcer.Enforce(principal.CasbinSubject(), objType, action)
	if err != nil {
		return fmt.Errorf("enforce %s on %s: %w", action, objType, err)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CanRead is AssertOwner for read access under the owner-scoped visibility
// policy: system-owned content is readable by any authenticated identity.
func (p *Policy) CanRead(ctx context.Context, owner Owner) error {
	principal, err := p.AssertAuthenticated(ctx)
	if err != nil {
		return err
	}
	switch o := owner.(type) {
	case OwnedBy:
		if o.ID == principal.ID {
			return nil
		}
		return ErrForbidden
	case SystemOwned:
		return nil
	default:
		return ErrForbidden
	}
}
