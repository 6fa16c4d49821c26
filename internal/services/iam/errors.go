package iam

import (
	"errors"
	"fmt"

	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
)

var (
	// ErrIdentityNotFound is returned by ResolveIdentity when the token subject
	// no longer exists. It matches repository.ErrNotFound.
	ErrIdentityNotFound = fmt.Errorf("identity %w", repository.ErrNotFound)

	// ErrInvalidCredentials is returned by Login for any credential failure.
	// The caller is never told which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidResetToken is returned for unknown, used or expired reset tokens.
	ErrInvalidResetToken = fmt.Errorf("%w: invalid or expired reset token", services.ErrInvalidInput)
)
