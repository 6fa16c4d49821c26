package iam

import (
	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/db/models"
)

// PrincipalFromUser builds the request-scoped principal for a resolved user.
//
// The principal is a snapshot: it is built fresh for every request and never
// cached, so role and profile changes apply to the next request.
func PrincipalFromUser(user *models.User) auth.AuthenticatedPrincipal {
	return auth.AuthenticatedPrincipal{
		ID:          user.ID,
		PrincipalID: auth.UserID(user.ID),
		Username:    user.Username,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
	}
}
