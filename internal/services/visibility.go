package services

import (
	"context"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
)

// CanRead applies the configured content visibility to a single-resource read.
// Under VisibilityPublic anyone may read, including anonymous callers; under
// VisibilityOwnerScoped the policy's owner rules apply.
func CanRead(ctx context.Context, policy *auth.Policy, visibility config.Visibility, owner auth.Owner) error {
	if visibility == config.VisibilityPublic {
		return nil
	}
	return policy.CanRead(ctx, owner)
}

// RequirePublic guards unscoped listings, which only exist under VisibilityPublic.
func RequirePublic(visibility config.Visibility) error {
	if visibility != config.VisibilityPublic {
		return auth.ErrForbidden
	}
	return nil
}
